package detect

import (
	"os"
	"path/filepath"
	"strings"
)

// Detector describes how to recognize one project ecosystem at a directory
// and which of its subdirectories hold regenerable build output. A nil
// DetectFunc falls back to "any detection file exists"; a nil
// ArtifactsFunc falls back to "those artifact dirs that exist".
type Detector struct {
	ID             string
	Name           string
	DetectionFiles []string
	ArtifactDirs   []string
	CleanCommand   string
	DetectFunc     func(dir string) bool
	ArtifactsFunc  func(dir string) []string
}

func (d Detector) Matches(dir string) bool {
	if d.DetectFunc != nil {
		return d.DetectFunc(dir)
	}
	for _, f := range d.DetectionFiles {
		if pathExists(filepath.Join(dir, f)) {
			return true
		}
	}
	return false
}

func (d Detector) ArtifactPaths(dir string) []string {
	if d.ArtifactsFunc != nil {
		return d.ArtifactsFunc(dir)
	}
	out := make([]string, 0, len(d.ArtifactDirs))
	for _, a := range d.ArtifactDirs {
		p := filepath.Join(dir, a)
		if st, err := os.Stat(p); err == nil && st.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func builtins() []Detector {
	return []Detector{
		{
			ID:             "cargo",
			Name:           "Cargo (Rust)",
			DetectionFiles: []string{"Cargo.toml"},
			ArtifactDirs:   []string{"target"},
			CleanCommand:   "cargo clean",
		},
		{
			ID:             "gradle",
			Name:           "Gradle",
			DetectionFiles: []string{"build.gradle", "build.gradle.kts", "gradlew"},
			ArtifactDirs:   []string{"build", ".gradle", "app/build"},
			CleanCommand:   "./gradlew clean",
		},
		{
			ID:             "maven",
			Name:           "Maven",
			DetectionFiles: []string{"pom.xml"},
			ArtifactDirs:   []string{"target"},
			CleanCommand:   "mvn clean",
		},
		{
			ID:             "npm",
			Name:           "npm / Node.js",
			DetectionFiles: []string{"package.json"},
			ArtifactDirs:   []string{"node_modules"},
		},
		{
			ID:             "go",
			Name:           "Go",
			DetectionFiles: []string{"go.mod"},
			CleanCommand:   "go clean -cache",
		},
		{
			ID:             "cmake",
			Name:           "CMake",
			DetectionFiles: []string{"CMakeLists.txt"},
			ArtifactDirs:   []string{"build"},
			// CMakeLists.txt alone is too common to act on: only a
			// configured build tree qualifies.
			DetectFunc: func(dir string) bool {
				if !pathExists(filepath.Join(dir, "CMakeLists.txt")) {
					return false
				}
				st, err := os.Stat(filepath.Join(dir, "build"))
				return err == nil && st.IsDir()
			},
		},
		{
			ID:             "python",
			Name:           "Python",
			DetectionFiles: []string{"venv", ".venv"},
			ArtifactDirs:   []string{"venv", ".venv", "__pycache__"},
		},
		{
			ID:             "bazel",
			Name:           "Bazel",
			DetectionFiles: []string{"WORKSPACE", "WORKSPACE.bazel"},
			CleanCommand:   "bazel clean --expunge",
		},
		{
			ID:           "dotnet",
			Name:         ".NET",
			ArtifactDirs: []string{"bin", "obj"},
			CleanCommand: "dotnet clean",
			DetectFunc: func(dir string) bool {
				entries, err := os.ReadDir(dir)
				if err != nil {
					return false
				}
				for _, e := range entries {
					name := e.Name()
					if strings.HasSuffix(name, ".csproj") || strings.HasSuffix(name, ".sln") {
						return true
					}
				}
				return false
			},
		},
	}
}

// KnownArtifactNames are directory names that never count as project
// sources when computing a project's last-modified time.
var KnownArtifactNames = map[string]struct{}{
	"target":       {},
	"build":        {},
	"node_modules": {},
	".gradle":      {},
	"bin":          {},
	"obj":          {},
}
