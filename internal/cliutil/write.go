// Package cliutil holds output helpers shared by the oascombine command line.
package cliutil

import (
	"fmt"
	"io"
	"os"
)

// failures receives write errors. Tests replace it.
var failures io.Writer = os.Stderr

// Writef writes formatted output to w. A failed write is reported on
// stderr and otherwise ignored.
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(failures, "write error: %v\n", err)
	}
}
