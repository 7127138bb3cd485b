package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ccexport/internal/cli"
	"ccexport/internal/config"
	"ccexport/internal/pipeline"
	"ccexport/internal/source"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var flagListFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations without exporting",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListFormat, "format", "table", "Output format: table, plain, or json")
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
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
	summaries := loadSummaries(units)

	switch strings.ToLower(flagListFormat) {
	case "", "table":
		writeTable(summaries, cfg.TUI.PreviewWidth)
		return nil
	case "plain":
		writePlain(summaries)
		return nil
	case "json":
		return writeJSON(summaries)
	default:
		return cli.Errorf("unsupported format: %s", flagListFormat)
	}
}

func writeTable(summaries []pipeline.Summary, previewWidth int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	tw.AppendHeader(table.Row{"#", "Updated", "Events", "P/S", "Files", "Sub", "Preview"})
	for i, s := range summaries {
		tw.AppendRow(table.Row{
			i + 1,
			cli.FormatMtime(s.Unit.ModTime),
			s.Events,
			fmt.Sprintf("%d/%d", s.PrimaryEvents, s.SecondaryEvents),
			len(s.Unit.Files),
			s.Unit.SubagentFiles,
			cli.Truncate(s.Preview, previewWidth),
		})
	}
	tw.Render()
}

func writePlain(summaries []pipeline.Summary) {
	fmt.Println("index\tupdated\tevents\tprimary\tsecondary\tsubagent_files\tpath\tpreview")
	for i, s := range summaries {
		fmt.Printf("%d\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			i+1,
			cli.FormatMtime(s.Unit.ModTime),
			s.Events,
			s.PrimaryEvents,
			s.SecondaryEvents,
			s.Unit.SubagentFiles,
			s.Unit.PrimaryFile,
			cli.EscapeNewlines(s.Preview),
		)
	}
}

type listEntry struct {
	Index           int      `json:"index"`
	SessionID       string   `json:"session_id,omitempty"`
	PrimaryFile     string   `json:"primary_file"`
	Files           []string `json:"files"`
	SubagentFiles   int      `json:"subagent_files"`
	Updated         string   `json:"updated"`
	Events          int      `json:"events"`
	PrimaryEvents   int      `json:"primary_events"`
	SecondaryEvents int      `json:"secondary_events"`
	Preview         string   `json:"preview"`
}

func writeJSON(summaries []pipeline.Summary) error {
	entries := make([]listEntry, 0, len(summaries))
	for i, s := range summaries {
		entries = append(entries, listEntry{
			Index:           i + 1,
			SessionID:       s.Unit.SessionID,
			PrimaryFile:     s.Unit.PrimaryFile,
			Files:           s.Unit.Files,
			SubagentFiles:   s.Unit.SubagentFiles,
			Updated:         cli.FormatMtime(s.Unit.ModTime),
			Events:          s.Events,
			PrimaryEvents:   s.PrimaryEvents,
			SecondaryEvents: s.SecondaryEvents,
			Preview:         s.Preview,
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
