package clean

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"

	"rustysweeper/internal/domain/model"
	"rustysweeper/internal/domain/safety"
	"rustysweeper/internal/infra/logging"
)

// runCommand is swapped out in tests.
var runCommand = func(ctx context.Context, dir string, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

// Executor cleans a single project, preferring the detector's native
// clean command and falling back to direct artifact deletion.
type Executor struct {
	DryRun         bool
	NativeCommands bool
	Logger         logging.Logger
}

func (e *Executor) Clean(ctx context.Context, p model.DetectedProject, command string) model.CleanResult {
	start := time.Now()
	res := e.clean(ctx, p, command)
	e.logResult(ctx, p, res, time.Since(start))
	return res
}

func (e *Executor) clean(ctx context.Context, p model.DetectedProject, command string) model.CleanResult {
	if e.DryRun {
		return model.CleanResult{Project: p, Status: model.CleanSuccess, FreedBytes: p.ArtifactSize, Message: "dry run"}
	}

	if command != "" && e.NativeCommands {
		if err := e.runNative(ctx, p, command); err == nil {
			return model.CleanResult{Project: p, Status: model.CleanSuccess, FreedBytes: p.ArtifactSize}
		}
		// Command failed; fall through to direct deletion.
	}

	if len(p.ArtifactPaths) == 0 {
		return model.CleanResult{Project: p, Status: model.CleanSkipped, Message: "no local artifacts to delete"}
	}

	var freed int64
	for _, artifact := range p.ArtifactPaths {
		if _, err := os.Stat(artifact); err != nil {
			continue
		}
		measured := DirSize(artifact)
		if err := safety.RemoveTree(artifact, p.Path, false); err != nil {
			return model.CleanResult{Project: p, Status: model.CleanFailed, FreedBytes: freed,
				Message: fmt.Sprintf("delete %s: %v", artifact, err)}
		}
		freed += measured
	}
	return model.CleanResult{Project: p, Status: model.CleanSuccess, FreedBytes: freed}
}

func (e *Executor) runNative(ctx context.Context, p model.DetectedProject, command string) error {
	argv, err := shellquote.Split(command)
	if err != nil || len(argv) == 0 {
		return fmt.Errorf("parse command %q: %w", command, err)
	}
	return runCommand(ctx, p.Path, argv)
}

func (e *Executor) logResult(ctx context.Context, p model.DetectedProject, res model.CleanResult, elapsed time.Duration) {
	if e.Logger == nil {
		return
	}
	entry := model.OperationLogEntry{
		Command:    "clean",
		Action:     "delete",
		Path:       p.Path,
		Type:       p.Type,
		SizeBytes:  res.FreedBytes,
		Result:     string(res.Status),
		DurationMS: elapsed.Milliseconds(),
		DryRun:     e.DryRun,
	}
	if res.Status == model.CleanFailed {
		entry.Error = res.Message
	}
	_ = e.Logger.Log(ctx, entry)
}
