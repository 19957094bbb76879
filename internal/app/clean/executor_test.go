package clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rustysweeper/internal/domain/model"
)

func TestExecutorDryRunLeavesFilesystemUnchanged(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "p")
	writeFile(t, filepath.Join(proj, "Cargo.toml"), 10)
	writeFile(t, filepath.Join(proj, "target", "big"), 10_000)

	p := model.DetectedProject{
		Path:          proj,
		Type:          "cargo",
		Name:          "p",
		ArtifactSize:  10_000,
		ArtifactPaths: []string{filepath.Join(proj, "target")},
	}

	e := &Executor{DryRun: true, NativeCommands: true}
	res := e.Clean(context.Background(), p, "cargo clean")

	if res.Status != model.CleanSuccess || res.FreedBytes != 10_000 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := os.Stat(filepath.Join(proj, "target", "big")); err != nil {
		t.Fatalf("dry run must not touch the filesystem: %v", err)
	}
}

func TestExecutorRunsNativeCommandInProjectDir(t *testing.T) {
	var gotDir string
	var gotArgv []string
	old := runCommand
	runCommand = func(_ context.Context, dir string, argv []string) error {
		gotDir = dir
		gotArgv = argv
		return nil
	}
	defer func() { runCommand = old }()

	proj := t.TempDir()
	p := model.DetectedProject{Path: proj, Type: "cargo", ArtifactSize: 512}

	e := &Executor{NativeCommands: true}
	res := e.Clean(context.Background(), p, "cargo clean")

	if res.Status != model.CleanSuccess || res.FreedBytes != 512 {
		t.Fatalf("unexpected result %+v", res)
	}
	if gotDir != proj {
		t.Fatalf("command ran in %s, want %s", gotDir, proj)
	}
	if len(gotArgv) != 2 || gotArgv[0] != "cargo" || gotArgv[1] != "clean" {
		t.Fatalf("unexpected argv %v", gotArgv)
	}
}

func TestExecutorFallsBackToDeletionOnCommandFailure(t *testing.T) {
	old := runCommand
	runCommand = func(context.Context, string, []string) error {
		return errors.New("exit status 1")
	}
	defer func() { runCommand = old }()

	root := t.TempDir()
	proj := filepath.Join(root, "p")
	writeFile(t, filepath.Join(proj, "Cargo.toml"), 10)
	writeFile(t, filepath.Join(proj, "src", "main.rs"), 20)
	writeFile(t, filepath.Join(proj, "target", "big"), 4096)

	p := model.DetectedProject{
		Path:          proj,
		Type:          "cargo",
		ArtifactSize:  4096,
		ArtifactPaths: []string{filepath.Join(proj, "target")},
	}

	e := &Executor{NativeCommands: true}
	res := e.Clean(context.Background(), p, "cargo clean")

	if res.Status != model.CleanSuccess {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.FreedBytes != 4096 {
		t.Fatalf("expected 4096 freed, got %d", res.FreedBytes)
	}
	if _, err := os.Stat(filepath.Join(proj, "target")); !os.IsNotExist(err) {
		t.Fatal("target should have been deleted by the fallback")
	}
	// Sources and the project root itself survive.
	if _, err := os.Stat(filepath.Join(proj, "src", "main.rs")); err != nil {
		t.Fatalf("source file lost: %v", err)
	}
	if _, err := os.Stat(filepath.Join(proj, "Cargo.toml")); err != nil {
		t.Fatalf("project root damaged: %v", err)
	}
}

func TestExecutorDeletesOnlyEnumeratedArtifacts(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "p")
	sibling := filepath.Join(root, "other")
	writeFile(t, filepath.Join(proj, "package.json"), 10)
	writeFile(t, filepath.Join(proj, "index.js"), 10)
	writeFile(t, filepath.Join(proj, "node_modules", "dep", "index.js"), 2048)
	writeFile(t, filepath.Join(sibling, "keep.txt"), 10)

	p := model.DetectedProject{
		Path:          proj,
		Type:          "npm",
		ArtifactSize:  2048,
		ArtifactPaths: []string{filepath.Join(proj, "node_modules")},
	}

	e := &Executor{NativeCommands: true}
	res := e.Clean(context.Background(), p, "")

	if res.Status != model.CleanSuccess || res.FreedBytes != 2048 {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, err := os.Stat(filepath.Join(proj, "node_modules")); !os.IsNotExist(err) {
		t.Fatal("node_modules should be gone")
	}
	for _, keep := range []string{
		filepath.Join(proj, "index.js"),
		filepath.Join(sibling, "keep.txt"),
	} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("unrelated path deleted: %s", keep)
		}
	}
}

func TestExecutorRejectsArtifactOutsideProject(t *testing.T) {
	root := t.TempDir()
	proj := filepath.Join(root, "p")
	victim := filepath.Join(root, "victim")
	writeFile(t, filepath.Join(proj, "package.json"), 10)
	writeFile(t, filepath.Join(victim, "data.txt"), 10)

	p := model.DetectedProject{
		Path:          proj,
		Type:          "npm",
		ArtifactPaths: []string{victim},
	}

	e := &Executor{NativeCommands: true}
	res := e.Clean(context.Background(), p, "")

	if res.Status != model.CleanFailed {
		t.Fatalf("expected failure for out-of-project artifact, got %+v", res)
	}
	if _, err := os.Stat(filepath.Join(victim, "data.txt")); err != nil {
		t.Fatalf("path outside the project was deleted: %v", err)
	}
}
