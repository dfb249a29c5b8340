package entity

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// RawLog is an event-log entry as supplied by a chain-log-fetching service.
// Data is kept as text so one malformed entry does not fail a whole batch.
type RawLog struct {
	ContractAddress common.Address `json:"address"`
	Topics          []common.Hash  `json:"topics"`
	Data            string         `json:"data"`
}

// ToLog converts the entry into the go-ethereum log type. An empty Data field
// is read as no data.
func (l RawLog) ToLog() (types.Log, error) {
	var data []byte
	if l.Data != "" {
		decoded, err := hexutil.Decode(l.Data)
		if err != nil {
			return types.Log{}, fmt.Errorf("invalid log data: %w", err)
		}
		data = decoded
	}
	return types.Log{
		Address: l.ContractAddress,
		Topics:  l.Topics,
		Data:    data,
	}, nil
}

// TransferLogRecord is a decoded ERC-20 Transfer event.
type TransferLogRecord struct {
	ContractAddress  string   `json:"contractAddress"`
	Amount           *big.Int `json:"amount"`
	SenderAddress    string   `json:"senderAddress"`
	RecipientAddress string   `json:"recipientAddress"`
}

// TransactionDescription is decoded ERC-20 call data.
type TransactionDescription struct {
	Name      string         `json:"name"`
	Signature string         `json:"signature"`
	Selector  string         `json:"selector"`
	Args      map[string]any `json:"args"`
}

// ActivityItem is a transfer touching a tracked address, with its chain position.
type ActivityItem struct {
	TransferLogRecord
	Network     string `json:"network"`
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	LogIndex    uint   `json:"logIndex"`
}
