package system

import (
	"bufio"
	"os"
	"strings"
)

// Mount is one entry from the kernel mount table.
type Mount struct {
	Device string
	Path   string
	FSType string
}

// mountsPath is overridden in tests.
var mountsPath = "/proc/mounts"

// virtualFSTypes are filesystem types that never hold user-reclaimable
// space and are excluded from monitoring.
var virtualFSTypes = map[string]bool{
	"proc":        true,
	"sysfs":       true,
	"devtmpfs":    true,
	"devpts":      true,
	"tmpfs":       true,
	"securityfs":  true,
	"cgroup":      true,
	"cgroup2":     true,
	"pstore":      true,
	"debugfs":     true,
	"hugetlbfs":   true,
	"mqueue":      true,
	"fusectl":     true,
	"configfs":    true,
	"binfmt_misc": true,
	"autofs":      true,
	"efivarfs":    true,
	"tracefs":     true,
	"bpf":         true,
	"overlay":     true,
	"squashfs":    true,
	"nsfs":        true,
	"ramfs":       true,
}

// Mounts returns the real (non-virtual) mounted filesystems.
func Mounts() ([]Mount, error) {
	f, err := os.Open(mountsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseMounts(f)
}

func parseMounts(f *os.File) ([]Mount, error) {
	var mounts []Mount
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		m := Mount{Device: fields[0], Path: unescapeMountPath(fields[1]), FSType: fields[2]}
		if isVirtual(m) {
			continue
		}
		mounts = append(mounts, m)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

func isVirtual(m Mount) bool {
	if virtualFSTypes[m.FSType] {
		return true
	}
	if strings.HasPrefix(m.Path, "/snap/") || strings.HasPrefix(m.Path, "/var/lib/docker/") {
		return true
	}
	// Devices that are not paths are pseudo-devices, except network
	// filesystems whose source looks like host:/export.
	if !strings.HasPrefix(m.Device, "/") && !strings.Contains(m.Device, ":") {
		return true
	}
	return false
}

// unescapeMountPath decodes the octal escapes /proc/mounts uses for
// spaces, tabs, newlines and backslashes in mount paths.
func unescapeMountPath(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			oct := s[i+1 : i+4]
			if isOctal(oct) {
				b.WriteByte(byte((oct[0]-'0')<<6 | (oct[1]-'0')<<3 | (oct[2] - '0')))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '7' {
			return false
		}
	}
	return true
}
