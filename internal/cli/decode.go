package cli

import (
	"fmt"
	"io"
	"os"

	"wallet_state/internal/domain/entity"
	"wallet_state/internal/erc20"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type transferOutput struct {
	ContractAddress  string `json:"contractAddress"`
	SenderAddress    string `json:"senderAddress"`
	RecipientAddress string `json:"recipientAddress"`
	Amount           string `json:"amount"`
}

func newDecodeLogsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-logs [file]",
		Short: "Decode ERC20 Transfer logs from a JSON array (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read logs: %w", err)
			}
			var raw []entity.RawLog
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("failed to parse logs: %w", err)
			}

			records := erc20.ParseRawTransfers(raw)
			out := make([]transferOutput, 0, len(records))
			for _, r := range records {
				out = append(out, transferOutput{
					ContractAddress:  r.ContractAddress,
					SenderAddress:    r.SenderAddress,
					RecipientAddress: r.RecipientAddress,
					Amount:           r.Amount.String(),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newDecodeCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-call <hex>",
		Short: "Decode ERC20 call data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hexutil.Decode(args[0])
			if err != nil {
				return fmt.Errorf("call data must be 0x-prefixed hex: %w", err)
			}
			desc, err := erc20.DecodeCall(data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), desc)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
