//go:build !unix
// +build !unix

package safety

import "os"

func secureRemoveAll(abs string) error {
	return os.RemoveAll(abs)
}
