package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ccexport/internal/cli"
	"ccexport/internal/config"

	"github.com/charmbracelet/huh"
)

// DefaultOutputPath returns the auto-generated output file name in the
// current working directory.
func DefaultOutputPath(now time.Time) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	name := "claude-conversations-" + now.Format("20060102-150405") + ".html"
	return filepath.Join(cwd, name)
}

// ResolvePath expands and absolutizes a user-provided output path,
// correcting a missing .html suffix.
func ResolvePath(path string) string {
	path = config.ExpandHome(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if !strings.EqualFold(filepath.Ext(path), ".html") {
		path += ".html"
	}
	return path
}

// PromptOutputPath asks the user to confirm or override the default output
// path. Empty input keeps the default; aborting the form cancels the run.
func PromptOutputPath(def string) (string, error) {
	var entered string

	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Output path").
			Description("Press Enter to use " + def).
			Placeholder(def).
			Value(&entered),
	))

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", cli.ErrCancelled
		}
		return "", cli.WrapUser("output prompt failed", err)
	}

	entered = strings.TrimSpace(entered)
	if entered == "" {
		return def, nil
	}
	return ResolvePath(entered), nil
}

// Write renders the document to path, creating parent directories.
func Write(path, title, sourcePath string, sections []Section) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return Render(f, title, sourcePath, sections)
}
