package restapi

import (
	"net/http"

	"wallet_state/internal/domain/entity"
	"wallet_state/internal/erc20"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type decodeLogsRequest struct {
	Logs []entity.RawLog `json:"logs"`
}

// TransferView is a decoded transfer with its amount as a decimal string.
type TransferView struct {
	ContractAddress  string `json:"contractAddress"`
	SenderAddress    string `json:"senderAddress"`
	RecipientAddress string `json:"recipientAddress"`
	Amount           string `json:"amount"`
}

// DecodeLogs handles POST /decode/logs. Entries that are not ERC20 transfers
// are dropped.
func (h *Handler) DecodeLogs(c *gin.Context) {
	var req decodeLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	records := erc20.ParseRawTransfers(req.Logs)
	transfers := make([]TransferView, 0, len(records))
	for _, r := range records {
		transfers = append(transfers, TransferView{
			ContractAddress:  r.ContractAddress,
			SenderAddress:    r.SenderAddress,
			RecipientAddress: r.RecipientAddress,
			Amount:           r.Amount.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers, "dropped": len(req.Logs) - len(transfers)})
}

type decodeCallRequest struct {
	Data string `json:"data" binding:"required"`
}

// DecodeCall handles POST /decode/call.
func (h *Handler) DecodeCall(c *gin.Context) {
	var req decodeCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	data, err := hexutil.Decode(req.Data)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "data must be 0x-prefixed hex")
		return
	}

	desc, ok := erc20.ParseAsERC20Call(data)
	if !ok {
		abortWithError(c, http.StatusUnprocessableEntity, "not an ERC20 call")
		return
	}
	c.JSON(http.StatusOK, desc)
}
