package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultWalletFilePath is used when no wallet file is configured.
const DefaultWalletFilePath = "data/wallets.txt"

// WalletFileLoader implements port.WalletProvider by reading one address per
// line, optionally followed by a label. Blank lines and # comments are skipped.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader.
func NewWalletFileLoader(filePath string, logger port.Logger) *WalletFileLoader {
	if filePath == "" {
		filePath = DefaultWalletFilePath
	}
	return &WalletFileLoader{filePath: filePath, logger: logger}
}

// GetWallets reads wallet addresses from the configured file path. A missing
// file means no seed wallets.
func (l *WalletFileLoader) GetWallets() ([]entity.Wallet, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Info("Wallet file not found, starting without seed wallets", "path", l.filePath)
			return []entity.Wallet{}, nil
		}
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	var wallets []entity.Wallet
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
		address := fields[0]
		if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
			l.logger.Warn("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", address)
			continue
		}
		key := strings.ToLower(address)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		wallets = append(wallets, entity.Wallet{Address: key, Label: strings.Join(fields[1:], " ")})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}

	l.logger.Info("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath)
	return wallets, nil
}
