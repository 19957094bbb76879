//go:build unix
// +build unix

package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// secureRemoveAll deletes the tree rooted at abs using directory file
// descriptors so a symlink swapped in mid-walk cannot redirect the
// deletion. Descent never crosses a filesystem boundary.
func secureRemoveAll(abs string) error {
	parent := filepath.Dir(abs)
	name := filepath.Base(abs)

	parentFD, err := openDirNoFollow(parent)
	if err != nil {
		return err
	}
	defer unix.Close(parentFD)

	st, err := lstatAt(parentFD, name)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil
		}
		return err
	}
	return removeEntryAt(parentFD, name, st, uint64(st.Dev))
}

func removeEntryAt(parentFD int, name string, st unix.Stat_t, rootDev uint64) error {
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		err := unix.Unlinkat(parentFD, name, 0)
		if errors.Is(err, unix.ENOENT) {
			return nil
		}
		return err
	}

	if uint64(st.Dev) != rootDev {
		return errors.New("PATH_BLOCKED: crossing filesystem boundary")
	}

	dirFD, err := unix.Openat(parentFD, name, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil
		}
		return err
	}

	names, err := readDirNames(dirFD)
	if err != nil {
		unix.Close(dirFD)
		return err
	}
	for _, child := range names {
		st, err := lstatAt(dirFD, child)
		if err != nil {
			if errors.Is(err, unix.ENOENT) {
				continue
			}
			unix.Close(dirFD)
			return err
		}
		if err := removeEntryAt(dirFD, child, st, rootDev); err != nil {
			unix.Close(dirFD)
			return err
		}
	}
	if err := unix.Close(dirFD); err != nil {
		return err
	}

	err = unix.Unlinkat(parentFD, name, unix.AT_REMOVEDIR)
	if errors.Is(err, unix.ENOENT) {
		return nil
	}
	return err
}

// openDirNoFollow opens an absolute directory path component by
// component with O_NOFOLLOW so no element may be a symlink.
func openDirNoFollow(path string) (int, error) {
	if !filepath.IsAbs(path) {
		return -1, errors.New("PATH_INVALID: not absolute")
	}
	cur, err := unix.Open(string(filepath.Separator), unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return -1, err
	}
	for _, c := range strings.Split(strings.TrimPrefix(path, string(filepath.Separator)), string(filepath.Separator)) {
		if c == "" || c == "." {
			continue
		}
		next, err := unix.Openat(cur, c, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW, 0)
		if err != nil {
			unix.Close(cur)
			return -1, err
		}
		unix.Close(cur)
		cur = next
	}
	return cur, nil
}

func lstatAt(parentFD int, name string) (unix.Stat_t, error) {
	var st unix.Stat_t
	err := unix.Fstatat(parentFD, name, &st, unix.AT_SYMLINK_NOFOLLOW)
	return st, err
}

func readDirNames(dirFD int) ([]string, error) {
	dupFD, err := unix.Dup(dirFD)
	if err != nil {
		return nil, err
	}
	f := os.NewFile(uintptr(dupFD), "dir")
	if f == nil {
		unix.Close(dupFD)
		return nil, errors.New("failed to open directory stream")
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
