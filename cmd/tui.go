package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"rustysweeper/internal/app/common"
	"rustysweeper/internal/app/tui"
)

var tuiFlags struct {
	oneFS   bool
	noColor bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui [PATH]",
	Short: "Browse disk usage interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		root := "/"
		if len(args) == 1 {
			root = args[0]
		}
		root, err = filepath.Abs(root)
		if err != nil {
			return err
		}
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", root)
		}

		noColor := tuiFlags.noColor || app.Config.TUI.ColorScheme == "none" || os.Getenv("NO_COLOR") != ""

		model := tui.New(root, tui.Options{
			OneFileSystem: tuiFlags.oneFS || !app.Config.Scanner.CrossFilesystems,
			ShowHidden:    app.Config.TUI.ShowHidden,
			NoColor:       noColor,
			DefaultSort:   app.Config.TUI.DefaultSort,
			Threads:       app.Config.Scanner.ParallelThreads,
		})

		p := tea.NewProgram(model, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().BoolVarP(&tuiFlags.oneFS, "one-file-system", "x", false, "Stay on the starting filesystem")
	tuiCmd.Flags().BoolVar(&tuiFlags.noColor, "no-color", false, "Disable colors")
}
