// Command carmarket-api serves the carmarket error boundary and inspects
// its error catalog.
//
// Usage:
//
//	carmarket-api serve [--config config.yml]
//	carmarket-api errors [--format table|json|yaml]
//	carmarket-api validate [file|-]
//	carmarket-api token --subject user-1 --role seller
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/carmarket/logger"
	"github.com/kbukum/carmarket/version"
)

const serviceName = "carmarket-api"

func newRootCmd() *cobra.Command {
	var configFile, envFile string

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Car marketplace API error boundary",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config.yml (default: search standard locations)")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file")

	load := func() (*Config, error) {
		return loadConfig(configFile, envFile)
	}

	root.AddCommand(
		newServeCmd(load),
		newErrorsCmd(),
		newValidateCmd(),
		newTokenCmd(load),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("Command failed", logger.ErrorFields("execute", err))
		os.Exit(1)
	}
}
