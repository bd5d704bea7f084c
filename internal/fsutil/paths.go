// Package fsutil holds the small file-system helpers the pipelines need.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether path names an existing regular file or directory
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// OutputPath derives a sibling path for input by replacing its extension
// with ext. An existing file is never overwritten: ".2", ".3", ... is
// inserted before the extension until a free name is found.
func OutputPath(input, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))

	candidate := base + ext
	for i := 2; FileExists(candidate) || candidate == input; i++ {
		candidate = fmt.Sprintf("%s.%d%s", base, i, ext)
	}
	return candidate
}

// PartPath returns the path of shard i of a sharded input
func PartPath(input string, i int) string {
	return fmt.Sprintf("%s_%d", input, i)
}

// Size returns the size of the file at path
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
