package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rustysweeper/internal/app/clean"
	"rustysweeper/internal/app/common"
	"rustysweeper/internal/domain/detect"
	"rustysweeper/internal/domain/model"
	"rustysweeper/internal/domain/size"
)

var cleanFlags struct {
	dryRun   bool
	maxDepth int
	types    string
	excludes []string
	ageDays  int
	force    bool
	jobs     int
	sizeOnly bool
}

var cleanCmd = &cobra.Command{
	Use:   "clean [PATH]",
	Short: "Detect development projects and remove their build artifacts",
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

		registry, err := buildRegistry(app.Config.Cleaner.ProjectTypes)
		if err != nil {
			return err
		}

		ctx, cancel := interruptibleContext(cmd.Context())
		defer cancel()

		maxDepth := cleanFlags.maxDepth
		if !cmd.Flags().Changed("max-depth") && app.Config.Cleaner.MaxDepth > 0 {
			maxDepth = app.Config.Cleaner.MaxDepth
		}
		excludes := cleanFlags.excludes
		if len(excludes) == 0 {
			excludes = app.Config.Cleaner.ExcludePatterns
		}
		ageDays := cleanFlags.ageDays
		if !cmd.Flags().Changed("age") {
			ageDays = app.Config.Cleaner.MinAgeDays
		}
		jobs := cleanFlags.jobs
		if !cmd.Flags().Changed("jobs") && app.Config.Cleaner.ParallelJobs > 0 {
			jobs = app.Config.Cleaner.ParallelJobs
		}

		scanner := &clean.ProjectScanner{
			Registry: registry,
			MaxDepth: maxDepth,
			Excludes: excludes,
		}
		projects, err := scanner.Scan(ctx, root)
		if err != nil {
			if ctx.Err() != nil {
				return common.WithExitCode(common.ExitInterrupted, common.ErrInterrupted)
			}
			return err
		}
		projects = clean.FilterByAge(projects, ageDays, time.Now())
		verbosef("detected %d projects under %s", len(projects), root)

		if len(projects) == 0 {
			if app.Options.JSON {
				return printResult(cleanPayload{Results: []model.CleanResult{}})
			}
			fmt.Println("No projects with build artifacts found.")
			return nil
		}

		if cleanFlags.sizeOnly {
			return reportProjects(app.Options.JSON, projects)
		}

		if !cleanFlags.dryRun && !cleanFlags.force {
			if !confirmClean(projects) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		svc := &clean.Service{
			Registry: registry,
			Executor: &clean.Executor{
				DryRun:         cleanFlags.dryRun,
				NativeCommands: true,
				Logger:         app.Logger,
			},
			Jobs:     jobs,
			Progress: clean.NewProgress(len(projects)),
		}

		results, summary := svc.Run(ctx, projects)
		if ctx.Err() != nil {
			return common.WithExitCode(common.ExitInterrupted, common.ErrInterrupted)
		}

		if app.Options.JSON {
			if err := printResult(cleanPayload{Results: results, Summary: &summary}); err != nil {
				return err
			}
		} else {
			renderCleanResults(results, summary, cleanFlags.dryRun)
		}

		if summary.Failed > 0 {
			return common.WithExitCode(common.ExitPartial,
				fmt.Errorf("%d of %d projects failed to clean", summary.Failed, len(results)))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanFlags.dryRun, "dry-run", "n", false, "Report what would be removed without deleting")
	cleanCmd.Flags().IntVarP(&cleanFlags.maxDepth, "max-depth", "d", 10, "Maximum directory depth to search")
	cleanCmd.Flags().StringVarP(&cleanFlags.types, "types", "t", "", "Comma-separated project types (default: all)")
	cleanCmd.Flags().StringSliceVarP(&cleanFlags.excludes, "exclude", "e", nil, "Directory names to skip")
	cleanCmd.Flags().IntVarP(&cleanFlags.ageDays, "age", "a", 0, "Only clean projects untouched for this many days")
	cleanCmd.Flags().BoolVarP(&cleanFlags.force, "force", "f", false, "Skip the confirmation prompt")
	cleanCmd.Flags().IntVarP(&cleanFlags.jobs, "jobs", "j", 4, "Parallel clean workers")
	cleanCmd.Flags().BoolVar(&cleanFlags.sizeOnly, "size-only", false, "Report artifact sizes without cleaning")
}

type cleanPayload struct {
	Results []model.CleanResult `json:"results"`
	Summary *model.CleanSummary `json:"summary,omitempty"`
}

func buildRegistry(types []string) (*detect.Registry, error) {
	registry := detect.NewRegistry()
	if cleanFlags.types != "" {
		var ids []string
		for _, t := range strings.Split(cleanFlags.types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				ids = append(ids, t)
			}
		}
		return registry.Only(ids)
	}
	if len(types) > 0 {
		return registry.Only(types)
	}
	return registry, nil
}

func confirmClean(projects []model.DetectedProject) bool {
	var total int64
	for _, p := range projects {
		total += p.ArtifactSize
	}
	fmt.Printf("About to clean %d projects (%s of build artifacts). Continue? [y/N] ",
		len(projects), size.Format(total))

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func reportProjects(asJSON bool, projects []model.DetectedProject) error {
	if asJSON {
		return printResult(projects)
	}
	var total int64
	for _, p := range projects {
		fmt.Printf("%-10s %10s  %s\n", p.Type, size.Format(p.ArtifactSize), p.Path)
		total += p.ArtifactSize
	}
	fmt.Printf("\n%d projects, %s reclaimable\n", len(projects), size.Format(total))
	return nil
}

func renderCleanResults(results []model.CleanResult, summary model.CleanSummary, dryRun bool) {
	verb := "freed"
	if dryRun {
		verb = "would free"
	}

	for _, r := range results {
		switch r.Status {
		case model.CleanSuccess:
			fmt.Printf("  ok     %-10s %10s  %s\n", r.Project.Type, size.Format(r.FreedBytes), r.Project.Path)
		case model.CleanSkipped:
			fmt.Printf("  skip   %-10s %10s  %s (%s)\n", r.Project.Type, "-", r.Project.Path, r.Message)
		default:
			fmt.Printf("  FAIL   %-10s %10s  %s (%s)\n", r.Project.Type, "-", r.Project.Path, r.Message)
		}
	}

	fmt.Printf("\nCleaned %d, failed %d, skipped %d (%s %s)\n",
		summary.Cleaned, summary.Failed, summary.Skipped, verb, size.Format(summary.TotalFreed))
}
