package safety

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var blockedPaths = []string{
	"/",
	"/boot",
	"/bin",
	"/sbin",
	"/lib",
	"/lib64",
	"/usr",
	"/etc",
	"/proc",
	"/sys",
	"/dev",
	"/run",
}

// ValidatePath rejects paths that must never be deleted: system roots,
// malformed input, and anything outside withinRoot when one is given.
// Callers pass the project root (or scan root) as withinRoot so a detector
// bug cannot reach unrelated siblings.
func ValidatePath(path string, withinRoot string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("PATH_INVALID: empty path")
	}
	if strings.ContainsRune(path, 0) {
		return errors.New("PATH_INVALID: null byte")
	}
	for _, r := range path {
		if r < 32 {
			return errors.New("PATH_INVALID: control character")
		}
	}
	if strings.Contains(path, "/../") || strings.HasSuffix(path, "/..") {
		return errors.New("PATH_INVALID: traversal")
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("PATH_INVALID: %w", err)
	}

	if isBlocked(abs) {
		return fmt.Errorf("PATH_BLOCKED: %s", abs)
	}

	if withinRoot != "" {
		rootAbs, err := filepath.Abs(withinRoot)
		if err != nil {
			return fmt.Errorf("PATH_INVALID: %w", err)
		}
		// The root itself is never a deletion target, only its contents.
		if abs == rootAbs {
			return fmt.Errorf("PATH_BLOCKED: %s is the containment root", abs)
		}
		if !strings.HasPrefix(abs, rootAbs+"/") {
			return fmt.Errorf("PATH_BLOCKED: %s outside %s", abs, rootAbs)
		}
	}

	return nil
}

func isBlocked(path string) bool {
	for _, p := range blockedPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RemoveTree validates and then recursively deletes path. When dryRun is
// set nothing is touched.
func RemoveTree(path string, withinRoot string, dryRun bool) error {
	if err := ValidatePath(path, withinRoot); err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return secureRemoveAll(abs)
}
