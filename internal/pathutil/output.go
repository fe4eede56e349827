package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputFile checks where a combined document is about to be written and
// returns that location as a clean absolute path.
//
// The target must be a regular file or not exist yet. Symlinks and
// directories are refused, and so is any of inputs: a combine never
// overwrites one of its own source files. Inputs that are URLs are ignored.
func OutputFile(path string, inputs ...string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("pathutil: cannot resolve output path: %w", err)
	}

	info, err := os.Lstat(abs)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return "", fmt.Errorf("pathutil: cannot stat output path: %w", err)
	case info.Mode()&os.ModeSymlink != 0:
		return "", fmt.Errorf("pathutil: refusing to write to symlink: %s", abs)
	case info.IsDir():
		return "", fmt.Errorf("pathutil: output path is a directory: %s", abs)
	}

	for _, in := range inputs {
		if in == "" || strings.Contains(in, "://") {
			continue
		}
		inAbs, err := filepath.Abs(filepath.Clean(in))
		if err != nil {
			continue
		}
		if inAbs == abs {
			return "", fmt.Errorf("pathutil: output would overwrite input %s", in)
		}
	}
	return abs, nil
}
