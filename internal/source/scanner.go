package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the transcript file extension.
const Ext = ".jsonl"

// FindFiles resolves input to the list of transcript files it covers: the
// file itself when input points at a .jsonl file, otherwise every .jsonl
// file under the directory tree, sorted by path. A missing input yields an
// empty list, not an error.
func FindFiles(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(input), Ext) {
			return []string{input}, nil
		}
		return nil, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), Ext) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// IsSubagentPath reports whether path lies inside a subagents transcript
// directory. Claude Code writes delegated flows to
// <project>/<session>/subagents/agent-<id>.jsonl.
func IsSubagentPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "subagents" {
			return true
		}
	}
	return false
}
