package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rustysweeper/internal/app/common"
	"rustysweeper/internal/infra/config"
	"rustysweeper/internal/infra/logging"
)

var opts common.GlobalOptions

var rootCmd = &cobra.Command{
	Use:   "rusty-sweeper",
	Short: "Disk space management for Linux",
	Long: "Rusty-sweeper scans directory trees for space usage, cleans regenerable\n" +
		"build artifacts from development projects, browses disks interactively,\n" +
		"and monitors filesystem usage with desktop notifications.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() error {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		appCtx, err := buildAppContext(ctx)
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(ctx, common.ContextKeyApp, appCtx))
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		appCtx, ok := cmd.Context().Value(common.ContextKeyApp).(*common.AppContext)
		if !ok {
			return nil
		}
		if c, ok := appCtx.Logger.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().CountVarP(&opts.Verbose, "verbose", "v", "Increase output verbosity")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.NoOpLog, "no-oplog", false, "Disable operation log")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(completionsCmd)
}

func printResult(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func verbosef(format string, a ...any) {
	if opts.Verbose > 0 && !opts.Quiet {
		fmt.Fprintf(os.Stderr, format+"\n", a...)
	}
}

func buildAppContext(ctx context.Context) (*common.AppContext, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	oplogDisabled := opts.NoOpLog || os.Getenv("RUSTY_SWEEPER_NO_OPLOG") == "1"
	oplog, err := logging.NewOperationLogger(ctx, oplogDisabled)
	if err != nil {
		oplog = logging.NewNoopLogger()
	}

	return &common.AppContext{
		Options: opts,
		Config:  cfg,
		Logger:  oplog,
	}, nil
}
