// Package cmd holds the storefront command line: the API server, database
// maintenance and a small shopping client.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"food-storefront/config"
	"food-storefront/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Food ordering storefront API and client",
	Long: `storefront serves the food ordering REST API (restaurants, menus, orders,
users) and doubles as a command line shopping client with a local cart.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, exportCmd, cartCmd, checkoutCmd, ordersCmd, loginCmd)
}

// loadConfig reads configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	v := viper.New()
	if err := v.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
