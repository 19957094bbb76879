package system

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCheckComputesUsableCapacityPercent(t *testing.T) {
	orig := statfsFn
	defer func() { statfsFn = orig }()

	statfsFn = func(path string, st *unix.Statfs_t) error {
		st.Frsize = 4096
		st.Blocks = 1000
		st.Bfree = 200  // 5% reserved for root
		st.Bavail = 150 // what unprivileged users can use
		return nil
	}

	s, err := Check("/")
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 1000*4096 {
		t.Fatalf("total: %d", s.Total)
	}
	if s.Used != 800*4096 {
		t.Fatalf("used: %d", s.Used)
	}
	if s.Available != 150*4096 {
		t.Fatalf("available: %d", s.Available)
	}
	// 800 used of 950 usable blocks.
	want := 100 * 800.0 / 950.0
	if s.Percent < want-0.01 || s.Percent > want+0.01 {
		t.Fatalf("percent: %f, want %f", s.Percent, want)
	}
}

func TestCheckEmptyFilesystem(t *testing.T) {
	orig := statfsFn
	defer func() { statfsFn = orig }()

	statfsFn = func(path string, st *unix.Statfs_t) error {
		return nil
	}

	s, err := Check("/")
	if err != nil {
		t.Fatal(err)
	}
	if s.Percent != 0 {
		t.Fatalf("expected 0%% on empty filesystem, got %f", s.Percent)
	}
}

func TestMountsFiltersVirtualFilesystems(t *testing.T) {
	content := `proc /proc proc rw,nosuid 0 0
sysfs /sys sysfs rw 0 0
/dev/sda1 / ext4 rw,relatime 0 0
tmpfs /run tmpfs rw 0 0
/dev/sdb1 /home ext4 rw 0 0
/dev/loop0 /snap/core/1234 squashfs ro 0 0
overlay /var/lib/docker/overlay2/abc/merged overlay rw 0 0
nas:/export /mnt/nas nfs4 rw 0 0
cgroup2 /sys/fs/cgroup cgroup2 rw 0 0
`
	path := filepath.Join(t.TempDir(), "mounts")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := mountsPath
	mountsPath = path
	defer func() { mountsPath = orig }()

	mounts, err := Mounts()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"/", "/home", "/mnt/nas"}
	if len(mounts) != len(want) {
		t.Fatalf("got %d mounts: %+v", len(mounts), mounts)
	}
	for i, m := range mounts {
		if m.Path != want[i] {
			t.Fatalf("mount %d: got %q, want %q", i, m.Path, want[i])
		}
	}
	if mounts[0].Device != "/dev/sda1" {
		t.Fatalf("device: %q", mounts[0].Device)
	}
}

func TestUnescapeMountPath(t *testing.T) {
	got := unescapeMountPath(`/mnt/my\040drive`)
	if got != "/mnt/my drive" {
		t.Fatalf("got %q", got)
	}
	if unescapeMountPath("/plain") != "/plain" {
		t.Fatal("plain path altered")
	}
}
