package restapi

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountView is a ready account as served over HTTP.
type AccountView struct {
	Address       string         `json:"address"`
	Network       string         `json:"network"`
	DisplayName   string         `json:"displayName"`
	DefaultName   string         `json:"defaultName"`
	DefaultAvatar string         `json:"defaultAvatar"`
	ENS           entity.ENSInfo `json:"ens"`
	Balances      []BalanceView  `json:"balances"`
}

// BalanceView is one asset amount with its exact and human readable forms.
type BalanceView struct {
	Symbol          string            `json:"symbol"`
	Decimals        uint8             `json:"decimals"`
	ContractAddress string            `json:"contractAddress,omitempty"`
	Amount          string            `json:"amount"`
	Formatted       string            `json:"formatted"`
	Network         string            `json:"network,omitempty"`
	DataSource      entity.DataSource `json:"dataSource,omitempty"`
	RetrievedAt     *time.Time        `json:"retrievedAt,omitempty"`
}

func amountView(a entity.AssetAmount) BalanceView {
	return BalanceView{
		Symbol:          a.Asset.Symbol,
		Decimals:        a.Asset.Decimals,
		ContractAddress: a.Asset.ContractAddress,
		Amount:          a.Amount.String(),
		Formatted:       accounts.FormatAmount(a),
	}
}

func accountView(r entity.AccountRecord) AccountView {
	view := AccountView{
		Address:       r.Address,
		Network:       r.Network.Identifier,
		DisplayName:   r.DefaultName,
		DefaultName:   r.DefaultName,
		DefaultAvatar: r.DefaultAvatar,
		ENS:           r.ENS,
		Balances:      make([]BalanceView, 0, len(r.Balances)),
	}
	if r.ENS.Name != "" {
		view.DisplayName = r.ENS.Name
	}
	for _, symbol := range sortedSymbols(r.Balances) {
		b := r.Balances[symbol]
		bv := amountView(b.AssetAmount)
		bv.Network = b.Network.Identifier
		bv.DataSource = b.DataSource
		retrievedAt := b.RetrievedAt
		bv.RetrievedAt = &retrievedAt
		view.Balances = append(view.Balances, bv)
	}
	return view
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(c *gin.Context) {
	state := h.directory.Snapshot()
	records := accounts.Accounts(state)

	views := make([]AccountView, 0, len(records))
	for _, r := range records {
		views = append(views, accountView(r))
	}
	loading := accounts.LoadingAddresses(state)
	if loading == nil {
		loading = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"accounts": views, "loading": loading})
}

// GetAccount handles GET /accounts/:address.
func (h *Handler) GetAccount(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}
	entry, tracked := h.directory.Snapshot().Entry(address)
	if !tracked {
		abortWithError(c, http.StatusNotFound, "account is not tracked")
		return
	}
	switch e := entry.(type) {
	case entity.Ready:
		c.JSON(http.StatusOK, accountView(e.Record))
	default:
		c.JSON(http.StatusAccepted, gin.H{"address": address, "status": "loading"})
	}
}

type loadAccountRequest struct {
	Address string `json:"address" binding:"required"`
}

// LoadAccount handles POST /accounts.
func (h *Handler) LoadAccount(c *gin.Context) {
	var req loadAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	address, ok := accounts.NormalizeAddress(req.Address)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "invalid address")
		return
	}
	if _, ok := h.dispatch(c, accounts.LoadAccount{Address: address}); !ok {
		return
	}
	h.logger.Info("Account tracked", zap.String("address", address))
	c.JSON(http.StatusAccepted, gin.H{"address": address})
}

// DeleteAccount handles DELETE /accounts/:address.
func (h *Handler) DeleteAccount(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}
	if _, ok := h.dispatch(c, accounts.DeleteAccount{Address: address}); !ok {
		return
	}
	c.Status(http.StatusNoContent)
}

type ensNameRequest struct {
	Network string `json:"network" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

type ensAvatarRequest struct {
	Network   string `json:"network" binding:"required"`
	AvatarURL string `json:"avatarUrl" binding:"required"`
}

// UpdateENSName handles PUT /accounts/:address/ens/name.
func (h *Handler) UpdateENSName(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}
	var req ensNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	network, ok := h.network(c, req.Network)
	if !ok {
		return
	}
	h.respondWithAccount(c, address, accounts.UpdateAccountName{Address: address, Network: network, Name: req.Name})
}

// UpdateENSAvatar handles PUT /accounts/:address/ens/avatar.
func (h *Handler) UpdateENSAvatar(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}
	var req ensAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	network, ok := h.network(c, req.Network)
	if !ok {
		return
	}
	h.respondWithAccount(c, address, accounts.UpdateENSAvatar{Address: address, Network: network, AvatarURL: req.AvatarURL})
}

// respondWithAccount applies an identity update. Untracked addresses are
// left alone and reported as not found.
func (h *Handler) respondWithAccount(c *gin.Context, address string, action accounts.Action) {
	state, ok := h.dispatch(c, action)
	if !ok {
		return
	}
	record, found := accounts.Account(state, address)
	if !found {
		abortWithError(c, http.StatusNotFound, "account is not tracked")
		return
	}
	c.JSON(http.StatusOK, accountView(record))
}

// BalanceInput is one balance reported by a caller.
type BalanceInput struct {
	Address         string `json:"address" binding:"required"`
	Network         string `json:"network" binding:"required"`
	Symbol          string `json:"symbol" binding:"required"`
	Name            string `json:"name"`
	Decimals        uint8  `json:"decimals"`
	ContractAddress string `json:"contractAddress"`
	Amount          string `json:"amount" binding:"required"`
}

type updateBalancesRequest struct {
	Balances []BalanceInput `json:"balances" binding:"required,dive"`
}

// UpdateBalances handles POST /balances. The whole batch is rejected if any
// entry is invalid.
func (h *Handler) UpdateBalances(c *gin.Context) {
	var req updateBalancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	now := time.Now().UTC()
	balances := make([]entity.AssetBalance, 0, len(req.Balances))
	for i, in := range req.Balances {
		address, ok := accounts.NormalizeAddress(in.Address)
		if !ok {
			abortWithError(c, http.StatusBadRequest, "balances["+strconv.Itoa(i)+"]: invalid address")
			return
		}
		amount, ok := new(big.Int).SetString(in.Amount, 10)
		if !ok {
			abortWithError(c, http.StatusBadRequest, "balances["+strconv.Itoa(i)+"]: amount must be a base-10 integer")
			return
		}
		network, ok := h.network(c, in.Network)
		if !ok {
			return
		}
		balances = append(balances, entity.AssetBalance{
			Address: address,
			Network: network,
			AssetAmount: entity.AssetAmount{
				Asset: entity.Asset{
					Symbol:          in.Symbol,
					Name:            in.Name,
					Decimals:        in.Decimals,
					ContractAddress: in.ContractAddress,
				},
				Amount: amount,
			},
			RetrievedAt: now,
			DataSource:  entity.DataSourceCustom,
		})
	}

	state, ok := h.dispatch(c, accounts.UpdateAccountBalance{Balances: balances})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": len(balances), "tracked": state.Len()})
}

// GetActivity handles GET /accounts/:address/activity. With refresh=true the
// history is re-read from the chain first.
func (h *Handler) GetActivity(c *gin.Context) {
	address, ok := addressParam(c)
	if !ok {
		return
	}
	if h.activity == nil {
		abortWithError(c, http.StatusNotImplemented, "activity service is disabled")
		return
	}

	var items []entity.ActivityItem
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		var err error
		items, err = h.activity.Refresh(c.Request.Context(), address)
		if err != nil {
			h.logger.Error("Failed to refresh activity", zap.String("address", address), zap.Error(err))
			abortWithError(c, http.StatusBadGateway, "failed to refresh activity")
			return
		}
	} else {
		items = h.activity.History(address)
	}
	if items == nil {
		items = []entity.ActivityItem{}
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "items": items})
}
