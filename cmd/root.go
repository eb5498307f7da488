package cmd

import (
	"fmt"
	"os"

	"catalog-bootstrapper/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "catalog-bootstrapper",
	Short: "Catalog Bootstrapper",
	Long: `Catalog Bootstrapper reconciles a catalog instance with a declarative spec.
It creates missing languages, price variants, VAT types, shapes, topics, grids,
items, customers and orders, and never touches what already exists.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the development config gives readable CLI errors.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory holding .env and config.yaml")
}
