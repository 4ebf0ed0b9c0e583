package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/capture-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "capture-cli",
	Short: "Capture CRM records from rendered record pages",
	Long:  "Extracts opportunity, lead, contact, account, and task records from the rendered text of CRM record pages and reconciles them into a local store for export.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
