// Package compileinfoprint prints the build provenance of the importing tool
// to os.Stderr when imported for its side effect.
package compileinfoprint

import "github.com/carbocation/epitopes/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
