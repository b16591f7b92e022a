// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-summary CLI. It searches
// the reporting database for faculty, lists scored candidate facts, generates
// narrative research summaries, manages the generation history, and serves
// the HTTP API.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-summary/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// logger is configured in PersistentPreRunE from the log.* settings.
var logger = logrus.New()

// rootCmd is the base command for the research-summary CLI.
var rootCmd = &cobra.Command{
	Use:   "research-summary",
	Short: "Generate narrative research summaries for faculty profiles",
	Long: `research-summary reads a researcher's publications, grants, clinical
specialties and clinical trials from the reporting database, ranks them, and
asks a language model to write a research summary from the records you select.

Every generation is kept in a session history of the ten most recent
summaries and in a durable SQLite log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := configureLogger(logger, viper.GetString("log.level"), viper.GetString("log.format")); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.WithField("keys", keys).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-summary.yaml or ~/.config/research-summary/research-summary.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-summary")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-summary"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_SUMMARY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
