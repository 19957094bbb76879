package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rustysweeper/internal/app/common"
	"rustysweeper/internal/app/scan"
	"rustysweeper/internal/domain/size"
	"rustysweeper/internal/domain/tree"
)

var scanFlags struct {
	maxDepth int
	top      int
	all      bool
	oneFS    bool
	jobs     int
	sort     string
}

var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "Scan a directory tree and report the largest entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		switch scanFlags.sort {
		case "size", "name", "mtime":
		default:
			return fmt.Errorf("invalid sort key %q (size, name or mtime)", scanFlags.sort)
		}

		watchInterrupt()

		threads := scanFlags.jobs
		if threads == 0 {
			threads = app.Config.Scanner.ParallelThreads
		}
		oneFS := scanFlags.oneFS || !app.Config.Scanner.CrossFilesystems

		var progress func(int64, string)
		showProgress := !app.Options.Quiet && !app.Options.JSON
		if showProgress {
			progress = func(count int64, _ string) {
				fmt.Fprintf(os.Stderr, "\rScanning… %s entries", humanize.Comma(count))
			}
		}

		report, err := scan.NewService().Run(root, scan.Options{
			MaxDepth:      scanFlags.maxDepth,
			IncludeHidden: scanFlags.all,
			OneFileSystem: oneFS,
			Threads:       threads,
			Sort:          scanFlags.sort,
			Progress:      progress,
		})
		if showProgress {
			fmt.Fprint(os.Stderr, "\r\x1b[K")
		}
		if err != nil {
			return err
		}

		if app.Options.JSON {
			return printResult(report.JSON())
		}
		renderScanReport(report, scanFlags.top)
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVarP(&scanFlags.maxDepth, "max-depth", "d", 3, "Maximum tree depth to record (0 = unlimited)")
	scanCmd.Flags().IntVarP(&scanFlags.top, "top", "n", 20, "Number of entries to show")
	scanCmd.Flags().BoolVarP(&scanFlags.all, "all", "a", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVarP(&scanFlags.oneFS, "one-file-system", "x", false, "Stay on the starting filesystem")
	scanCmd.Flags().IntVarP(&scanFlags.jobs, "jobs", "j", 0, "Worker threads (0 = auto)")
	scanCmd.Flags().StringVar(&scanFlags.sort, "sort", "size", "Sort order: size, name or mtime")
}

const scanBarWidth = 20

func renderScanReport(r *scan.Report, top int) {
	entries := r.Top(top)
	total := r.Root.Size
	if total < 1 {
		total = 1
	}

	fmt.Printf("%-56s %10s  %s\n", "PATH", "SIZE", "")
	for _, e := range entries {
		name := e.Path
		if len(name) > 56 {
			name = "…" + name[len(name)-55:]
		}
		fmt.Printf("%-56s %10s  %s%s\n",
			name, size.Format(e.Size), scanBar(e.Size, total), scanSuffix(e))
	}

	fmt.Printf("\nTotal: %s  (%s files, %s dirs)  in %s\n",
		size.Format(r.Root.Size),
		humanize.Comma(r.Root.FileCount),
		humanize.Comma(r.Root.DirCount),
		r.Elapsed.Round(time.Millisecond))
}

func scanBar(n, total int64) string {
	filled := int(int64(scanBarWidth) * n / total)
	if filled > scanBarWidth {
		filled = scanBarWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", scanBarWidth-filled)
}

func scanSuffix(e *tree.Entry) string {
	if e.IsError() {
		return "  (" + e.Err + ")"
	}
	return ""
}
