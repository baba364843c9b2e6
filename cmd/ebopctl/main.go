package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/danmuck/ebopctl/internal/logging"
	"github.com/danmuck/ebopctl/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const metricsFlag = "metrics-file"

func main() {
	if err := execute(newRootCmd()); err != nil {
		fmt.Fprintf(os.Stderr, "ebopctl: %v\n", err)
		os.Exit(1)
	}
}

// execute runs root and then writes the metrics textfile, whether or not the
// command failed, so failure outcomes are exported too.
func execute(root *cobra.Command) error {
	err := root.Execute()
	path, _ := root.PersistentFlags().GetString(metricsFlag)
	if path == "" {
		return err
	}
	if merr := observability.WriteTextfile(path); merr != nil {
		return errors.Join(err, merr)
	}
	log.Debug().Str("path", path).Msg("ebopctl metrics written")
	return err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ebopctl",
		Short:         "Encode and decode eclipsing binary model parameter files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.ConfigureRuntime()
			observability.RegisterMetrics()
		},
	}
	root.PersistentFlags().String(metricsFlag, "", "write codec metrics in Prometheus textfile format")
	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newValidateCmd(),
		newTemplateCmd(),
	)
	return root
}
