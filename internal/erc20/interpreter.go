// Package erc20 decodes ERC-20 event logs and call data.
package erc20

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"wallet_state/internal/domain/entity"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrNotTransfer is returned for logs whose first topic is not the Transfer event.
	ErrNotTransfer = errors.New("log is not an ERC20 Transfer event")
	// ErrUnknownMethod is returned for call data that does not match any ERC-20 method.
	ErrUnknownMethod = errors.New("call data does not match an ERC20 method")
)

// ParseTransfers decodes every log that is a well-formed ERC-20 Transfer and
// drops the rest. Output order follows input order.
func ParseTransfers(logs []types.Log) []entity.TransferLogRecord {
	records := make([]entity.TransferLogRecord, 0, len(logs))
	for _, l := range logs {
		record, err := ParseTransfer(l)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records
}

// ParseRawTransfers is ParseTransfers for entries received as JSON. Entries
// whose data is not valid hex are dropped like any other non-transfer.
func ParseRawTransfers(raw []entity.RawLog) []entity.TransferLogRecord {
	logs := make([]types.Log, 0, len(raw))
	for _, r := range raw {
		l, err := r.ToLog()
		if err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return ParseTransfers(logs)
}

// ParseTransfer decodes a single Transfer log.
func ParseTransfer(l types.Log) (entity.TransferLogRecord, error) {
	initABI()

	if len(l.Topics) == 0 || l.Topics[0] != transferEvent.ID {
		return entity.TransferLogRecord{}, ErrNotTransfer
	}

	values := make(map[string]any, len(transferEvent.Inputs))
	if err := abi.ParseTopicsIntoMap(values, transferTopic, l.Topics[1:]); err != nil {
		return entity.TransferLogRecord{}, fmt.Errorf("failed to decode Transfer topics: %w", err)
	}
	if err := transferEvent.Inputs.NonIndexed().UnpackIntoMap(values, l.Data); err != nil {
		return entity.TransferLogRecord{}, fmt.Errorf("failed to decode Transfer data: %w", err)
	}

	from, okFrom := values["from"].(common.Address)
	to, okTo := values["to"].(common.Address)
	amount, okAmount := values["amount"].(*big.Int)
	if !okFrom || !okTo || !okAmount || amount == nil {
		return entity.TransferLogRecord{}, fmt.Errorf("transfer log is missing fields: from=%t to=%t amount=%t", okFrom, okTo, okAmount)
	}

	return entity.TransferLogRecord{
		ContractAddress:  lowerHex(l.Address),
		Amount:           new(big.Int).Set(amount),
		SenderAddress:    lowerHex(from),
		RecipientAddress: lowerHex(to),
	}, nil
}

// ParseAsERC20Call decodes call data against the ERC-20 and ERC-2612
// methods. It reports false when the selector is unknown or the arguments do
// not decode.
func ParseAsERC20Call(data []byte) (*entity.TransactionDescription, bool) {
	desc, err := DecodeCall(data)
	if err != nil {
		return nil, false
	}
	return desc, true
}

// DecodeCall is ParseAsERC20Call with the failure reason.
func DecodeCall(data []byte) (*entity.TransactionDescription, error) {
	initABI()

	if len(data) < 4 {
		return nil, fmt.Errorf("call data too short: %d bytes", len(data))
	}
	method, err := parsedABI.MethodById(data[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, hexutil.Encode(data[:4]))
	}

	args := make(map[string]any, len(method.Inputs))
	if err := method.Inputs.UnpackIntoMap(args, data[4:]); err != nil {
		return nil, fmt.Errorf("failed to decode arguments of %s: %w", method.Sig, err)
	}
	for name, v := range args {
		args[name] = normalizeArg(v)
	}

	return &entity.TransactionDescription{
		Name:      method.RawName,
		Signature: method.Sig,
		Selector:  hexutil.Encode(method.ID),
		Args:      args,
	}, nil
}

func normalizeArg(v any) any {
	switch value := v.(type) {
	case common.Address:
		return lowerHex(value)
	case [32]byte:
		return common.Hash(value)
	default:
		return v
	}
}

func lowerHex(a common.Address) string {
	return strings.ToLower(a.Hex())
}
