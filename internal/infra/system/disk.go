package system

import (
	"fmt"

	"golang.org/x/sys/unix"

	"rustysweeper/internal/domain/model"
)

// statfsFn is swapped out in tests.
var statfsFn = unix.Statfs

// Check returns the usage snapshot for the filesystem containing path.
// The percentage is computed against usable capacity (used + available)
// so blocks reserved for root do not inflate the reading.
func Check(path string) (model.DiskStatus, error) {
	var st unix.Statfs_t
	if err := statfsFn(path, &st); err != nil {
		return model.DiskStatus{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	frsize := uint64(st.Frsize)
	total := st.Blocks * frsize
	free := st.Bfree * frsize
	available := st.Bavail * frsize
	used := total - free

	usable := used + available
	if usable == 0 {
		usable = 1
	}
	percent := 100 * float64(used) / float64(usable)

	return model.DiskStatus{
		MountPoint: path,
		Total:      total,
		Used:       used,
		Available:  available,
		Percent:    percent,
	}, nil
}

// CheckMounts checks each of the given mount points, returning one status
// per mount. A mount that cannot be checked yields an error for the whole
// call so the monitor can surface it instead of silently skipping.
func CheckMounts(mounts []string) ([]model.DiskStatus, error) {
	statuses := make([]model.DiskStatus, 0, len(mounts))
	for _, m := range mounts {
		s, err := Check(m)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// CheckAll checks every real mounted filesystem found in the mount table.
func CheckAll() ([]model.DiskStatus, error) {
	mounts, err := Mounts()
	if err != nil {
		return nil, err
	}
	statuses := make([]model.DiskStatus, 0, len(mounts))
	for _, m := range mounts {
		s, err := Check(m.Path)
		if err != nil {
			continue
		}
		s.Device = m.Device
		statuses = append(statuses, s)
	}
	return statuses, nil
}
