package clean

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"rustysweeper/internal/domain/detect"
	"rustysweeper/internal/domain/model"
	"rustysweeper/internal/domain/size"
)

// ProjectScanner walks a directory tree looking for project roots with
// regenerable build output.
type ProjectScanner struct {
	Registry *detect.Registry
	MaxDepth int
	Excludes []string
}

// Scan returns the detected projects under root. Descent stops at a
// detected project so build output nested inside it is not re-reported.
func (s *ProjectScanner) Scan(ctx context.Context, root string) ([]model.DetectedProject, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var projects []model.DetectedProject
	if err := s.walk(ctx, abs, 0, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectScanner) walk(ctx context.Context, dir string, depth int, projects *[]model.DetectedProject) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.MaxDepth > 0 && depth > s.MaxDepth {
		return nil
	}
	if s.isExcluded(filepath.Base(dir)) && depth > 0 {
		return nil
	}

	if det, ok := s.Registry.Match(dir); ok {
		if p, ok := buildProject(dir, det); ok {
			*projects = append(*projects, p)
		}
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are skipped, not fatal.
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if err := s.walk(ctx, filepath.Join(dir, e.Name()), depth+1, projects); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProjectScanner) isExcluded(name string) bool {
	for _, x := range s.Excludes {
		if name == x {
			return true
		}
	}
	return false
}

// Detect checks a single directory against the registry, sizing its
// artifacts when it matches.
func Detect(reg *detect.Registry, dir string) (model.DetectedProject, bool) {
	det, ok := reg.Match(dir)
	if !ok {
		return model.DetectedProject{}, false
	}
	return buildProject(dir, det)
}

// buildProject assembles the DetectedProject for a matched directory.
// A detector that yields neither artifacts nor a clean command gives
// nothing to act on, so the match is dropped.
func buildProject(dir string, det detect.Detector) (model.DetectedProject, bool) {
	artifacts := det.ArtifactPaths(dir)
	if len(artifacts) == 0 && det.CleanCommand == "" {
		return model.DetectedProject{}, false
	}

	var total int64
	for _, a := range artifacts {
		total += DirSize(a)
	}

	return model.DetectedProject{
		Path:          dir,
		Type:          det.ID,
		Name:          filepath.Base(dir),
		ArtifactSize:  total,
		ArtifactPaths: artifacts,
	}, true
}

// DirSize sums the apparent size of every regular file under path.
func DirSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += size.Apparent(info)
			}
		}
		return nil
	})
	return total
}

// FilterByAge drops projects whose sources were touched within the last
// minAgeDays. Build output does not count as a source.
func FilterByAge(projects []model.DetectedProject, minAgeDays int, now time.Time) []model.DetectedProject {
	if minAgeDays <= 0 {
		return projects
	}
	cutoff := now.Add(-time.Duration(minAgeDays) * 24 * time.Hour)

	out := make([]model.DetectedProject, 0, len(projects))
	for _, p := range projects {
		if !lastSourceModified(p.Path).After(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// lastSourceModified is the newest mtime over files whose path contains
// no component that is a known artifact directory name.
func lastSourceModified(root string) time.Time {
	var newest time.Time
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if _, artifact := detect.KnownArtifactNames[d.Name()]; artifact && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}
