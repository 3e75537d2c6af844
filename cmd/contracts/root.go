package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "contracts",
		Short:         "Contract requisition service",
		SilenceUsage:  true,
		Version:       Version + " (" + BuildTime + ")",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 加载 .env 文件
			if err := godotenv.Load(); err != nil {
				log.Printf("Warning: .env file not found, using environment variables")
			}
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./configs/config.yaml)")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newRemindCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	return cmd
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
