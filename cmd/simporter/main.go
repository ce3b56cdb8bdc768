// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the simporter CLI, which converts
// a SimaPro project export into a brightway project database linked
// against ecoinvent and the biosphere flow list.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the simporter CLI.
var rootCmd = &cobra.Command{
	Use:   "simporter",
	Short: "Import a SimaPro project export into a brightway project",
	Long: `simporter reads a SimaPro CSV export, resolves its processes and
elementary flows against an ecoinvent reference database, and writes a
brightway-compatible project database.

Processes with joint production are split into single-output processes
with allocated amounts. Whatever cannot be resolved automatically
(obsolete processes, system processes, SimaPro-only processes, created
biosphere flows) is reported for manual reconnection.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./simporter.yaml or ~/.config/simporter/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("simporter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "simporter"))
		}
	}

	viper.SetEnvPrefix("SIMPORTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the stage logger. Import runs are operator-facing,
// so the console encoder is used rather than JSON.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
