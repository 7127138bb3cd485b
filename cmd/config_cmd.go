package cmd

import (
	"fmt"

	"ccexport/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [general]")
	fmt.Printf("    input_dir: %s\n", cfg.General.InputDir)
	fmt.Printf("    title:     %s\n", cfg.General.Title)
	fmt.Println()

	fmt.Println("  [tui]")
	fmt.Printf("    page_size:     %d\n", cfg.TUI.PageSize)
	fmt.Printf("    preview_width: %d\n", cfg.TUI.PreviewWidth)
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config file already exists at %s", config.ConfigPath())
	}
	if err := config.Save(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", config.ConfigPath())
	return nil
}
