// Package compileinfo reports which commit a tool was built from, so that
// binder calls and quantile caches can be traced to the code that made them.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Tool       string
	Module     string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	dirty := ""
	if c.Modified {
		dirty = " (with uncommitted changes)"
	}

	commit := c.Commit
	if commit == "" {
		commit = "unknown"
	}

	return fmt.Sprintf("%s %s built with %s from commit %s%s at %s", c.Tool, c.Version, c.GoVersion, commit, dirty, c.CommitTime)
}

// Get reads the build information embedded in the running binary. Fields are
// empty when the binary carries none, as under go test.
func Get() CompileInfo {
	out := CompileInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Tool = z.Path
	out.Module = z.Main.Path
	out.Version = z.Main.Version
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func Fprint(w io.Writer) {
	fmt.Fprintln(w, Get())
}

func PrintToStdErr() {
	Fprint(os.Stderr)
}
