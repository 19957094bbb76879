package clean

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rustysweeper/internal/domain/detect"
	"rustysweeper/internal/domain/model"
)

func TestServiceCleansProjectsInParallel(t *testing.T) {
	root := t.TempDir()

	npm := filepath.Join(root, "web")
	writeFile(t, filepath.Join(npm, "package.json"), 10)
	writeFile(t, filepath.Join(npm, "node_modules", "a", "x.js"), 1000)

	py := filepath.Join(root, "ml")
	writeFile(t, filepath.Join(py, "venv", "lib", "mod.py"), 500)

	reg := detect.NewRegistry()
	ps := &ProjectScanner{Registry: reg, MaxDepth: 10}
	projects, err := ps.Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}

	svc := &Service{
		Registry: reg,
		Executor: &Executor{NativeCommands: false},
		Jobs:     4,
		Progress: NewProgress(len(projects)),
	}
	results, summary := svc.Run(context.Background(), projects)

	if summary.Cleaned != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.TotalFreed != 1500 {
		t.Fatalf("expected 1500 freed, got %d", summary.TotalFreed)
	}
	for _, r := range results {
		if r.Status != model.CleanSuccess {
			t.Fatalf("unexpected result %+v", r)
		}
	}
	if _, err := os.Stat(filepath.Join(npm, "node_modules")); !os.IsNotExist(err) {
		t.Fatal("node_modules not removed")
	}
	if _, err := os.Stat(filepath.Join(py, "venv")); !os.IsNotExist(err) {
		t.Fatal("venv not removed")
	}

	done, total, _ := svc.Progress.Snapshot()
	if done != 2 || total != 2 {
		t.Fatalf("progress out of sync: %d/%d", done, total)
	}
}

func TestServiceOneFailureDoesNotAbortOthers(t *testing.T) {
	root := t.TempDir()

	good := filepath.Join(root, "good")
	writeFile(t, filepath.Join(good, "package.json"), 10)
	writeFile(t, filepath.Join(good, "node_modules", "x.js"), 100)

	bad := filepath.Join(root, "bad")
	victim := filepath.Join(root, "victim")
	writeFile(t, filepath.Join(bad, "package.json"), 10)
	writeFile(t, filepath.Join(victim, "keep.txt"), 10)

	projects := []model.DetectedProject{
		{Path: bad, Type: "npm", Name: "bad", ArtifactPaths: []string{victim}},
		{Path: good, Type: "npm", Name: "good", ArtifactSize: 100,
			ArtifactPaths: []string{filepath.Join(good, "node_modules")}},
	}

	svc := &Service{Registry: detect.NewRegistry(), Executor: &Executor{}, Jobs: 1}
	results, summary := svc.Run(context.Background(), projects)

	if summary.Failed != 1 || summary.Cleaned != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if results[0].Status != model.CleanFailed {
		t.Fatalf("expected first project to fail, got %+v", results[0])
	}
	if results[1].Status != model.CleanSuccess {
		t.Fatalf("expected second project to succeed, got %+v", results[1])
	}
	if _, err := os.Stat(filepath.Join(good, "node_modules")); !os.IsNotExist(err) {
		t.Fatal("good project should still have been cleaned")
	}
	if _, err := os.Stat(filepath.Join(victim, "keep.txt")); err != nil {
		t.Fatalf("path outside the project was deleted: %v", err)
	}
}

func TestServiceSkipsProjectWithNothingToClean(t *testing.T) {
	projects := []model.DetectedProject{
		{Path: "/nowhere", Type: "npm", Name: "empty"},
	}

	svc := &Service{Registry: detect.NewRegistry(), Executor: &Executor{}}
	results, summary := svc.Run(context.Background(), projects)

	if summary.Skipped != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if results[0].Status != model.CleanSkipped {
		t.Fatalf("unexpected result %+v", results[0])
	}
}

func TestSummarizeCounts(t *testing.T) {
	results := []model.CleanResult{
		{Status: model.CleanSuccess, FreedBytes: 100},
		{Status: model.CleanSuccess, FreedBytes: 50},
		{Status: model.CleanFailed},
		{Status: model.CleanSkipped},
	}
	sum := Summarize(results)
	if sum.Cleaned != 2 || sum.Failed != 1 || sum.Skipped != 1 || sum.TotalFreed != 150 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}
