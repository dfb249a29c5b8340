// Package cli holds the wallet_state command tree.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "wallet_state",
		Short: "Wallet account and balance state service",
		Long: `wallet_state tracks wallet addresses, merges their balances into a combined
portfolio and decodes ERC20 transfer logs and call data.`,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config/config.yaml", "path to the YAML config file")

	root.AddCommand(
		newServeCommand(&cfgPath),
		newDecodeLogsCommand(),
		newDecodeCallCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
