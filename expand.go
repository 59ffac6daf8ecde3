package epitopes

import (
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// ExpandHome expands ~ to its proper path, where appropriate. Google Storage
// paths are returned untouched.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return path, pfx.Err(err)
	}

	return filepath.Join(usr.HomeDir, path[2:]), nil
}
