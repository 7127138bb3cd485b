// Package cmd implements the ccexport CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ccexport/internal/classify"
	"ccexport/internal/cli"
	"ccexport/internal/config"
	"ccexport/internal/export"
	"ccexport/internal/pipeline"
	"ccexport/internal/source"
	"ccexport/internal/store"
	"ccexport/internal/tui"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagInput          string
	flagOutput         string
	flagSelect         string
	flagAll            bool
	flagTitle          string
	flagNonInteractive bool
	flagNoCache        bool
	flagQuiet          bool
)

var rootCmd = &cobra.Command{
	Use:   "ccexport",
	Short: "Export Claude Code conversations to HTML",
	Long: "Scan Claude Code JSONL transcripts, pick conversations interactively\n" +
		"or by index, and export them to a single self-contained HTML file.",
	RunE:          runExport,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is the main entry point called from main.go. Expected user
// mistakes (bad selection, cancelled picker) exit 2; everything else
// exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var uerr *cli.UserError
		if errors.As(err, &uerr) {
			fmt.Fprintf(os.Stderr, "%s\n", uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagInput, "input", "i", "", "Input .jsonl file or directory (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite summary cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output HTML path (default claude-conversations-<timestamp>.html)")
	rootCmd.Flags().StringVarP(&flagSelect, "select", "s", "", "Selection expression, e.g. \"1,3-5\" or \"all\"")
	rootCmd.Flags().BoolVar(&flagAll, "all", false, "Export every conversation without prompting")
	rootCmd.Flags().StringVar(&flagTitle, "title", "", "HTML document title (default from config)")
	rootCmd.Flags().BoolVar(&flagNonInteractive, "non-interactive", false, "Never launch the picker, even on a TTY")
}

// inputPath resolves the effective input, flag over config.
func inputPath(cfg config.Config) string {
	if flagInput != "" {
		return config.ExpandHome(flagInput)
	}
	return config.ExpandHome(cfg.General.InputDir)
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg := config.LoadOrDefault()
	input := inputPath(cfg)

	files, err := source.FindFiles(input)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", input, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found in %s", source.Ext, input)
	}

	units := pipeline.BuildUnits(files)

	indices, err := chooseUnits(cfg, units)
	if err != nil {
		return err
	}

	title := flagTitle
	if title == "" {
		title = cfg.General.Title
	}

	sections := make([]export.Section, 0, len(indices))
	for _, idx := range indices {
		u := units[idx-1]
		records := pipeline.MergeUnit(u)
		events := make([]classify.Event, 0, len(records))
		for _, rec := range records {
			events = append(events, classify.Normalize(rec))
		}
		sections = append(sections, export.Section{
			Path:   u.PrimaryFile,
			Blocks: classify.GroupEvents(events),
		})
	}

	outPath, err := resolveOutput()
	if err != nil {
		return err
	}

	if err := export.Write(outPath, title, input, sections); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Printf("Exported %d conversation(s) to: %s\n", len(sections), outPath)
	return nil
}

// chooseUnits decides which units to export: a single unit needs no
// choice, explicit flags beat the picker, and the picker only runs when
// stdin and stdout are both terminals.
func chooseUnits(cfg config.Config, units []pipeline.Unit) ([]int, error) {
	if len(units) == 1 {
		return []int{1}, nil
	}
	if flagAll {
		return pipeline.ParseSelection("all", len(units))
	}
	if flagSelect != "" {
		return pipeline.ParseSelection(flagSelect, len(units))
	}

	if flagNonInteractive || !stdioIsTTY() {
		return nil, cli.Errorf("directory input requires --all or --select in non-interactive mode")
	}

	summaries := loadSummaries(units)
	rows := tui.BuildRows(summaries)

	// Force TrueColor so background styling produces ANSI codes even when
	// lipgloss would otherwise detect an Ascii profile.
	lipgloss.SetColorProfile(termenv.TrueColor)

	return tui.Run(rows, cfg.TUI.PageSize)
}

func stdioIsTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// loadSummaries builds per-unit summaries, through the SQLite cache
// unless --no-cache. Cache failures fall back to a full parse.
func loadSummaries(units []pipeline.Unit) []pipeline.Summary {
	progress := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		if current == total {
			fmt.Fprintf(os.Stderr, "\n")
		}
	}

	if !flagNoCache {
		cache, err := store.Open(store.CachePath())
		if err == nil {
			defer cache.Close()
			return pipeline.LoadSummariesWithCache(units, cache, progress)
		}
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
		}
	}

	return pipeline.LoadSummaries(units, progress)
}

// resolveOutput picks the output path: flag, or an interactive prompt
// when the picker could run, or the timestamped default.
func resolveOutput() (string, error) {
	def := export.DefaultOutputPath(time.Now())
	if flagOutput != "" {
		return export.ResolvePath(flagOutput), nil
	}
	if !flagNonInteractive && stdioIsTTY() {
		return export.PromptOutputPath(def)
	}
	return def, nil
}
