package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/relver/internal/config"
	"github.com/ariel-frischer/relver/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize relver configuration",
	Long: `Inspect and initialize relver configuration.

Configuration is loaded with priority: RELVER_* environment variables >
project config (.relver.yml) > user config > built-in defaults.

Examples:
  relver config show
  relver config path
  relver config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration after all layers are merged",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigShow(cmd)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file paths and whether each exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigPath(cmd)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented starter .relver.yml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigInit(cmd)
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(map[string]any{
		"version_file":     cfg.VersionFile,
		"changelog_file":   cfg.ChangelogFile,
		"changelog_output": cfg.ChangelogOutput,
		"tag_prefix":       cfg.TagPrefix,
		"remote":           cfg.Remote,
		"commit_name":      cfg.CommitName,
		"commit_email":     cfg.CommitEmail,
		"allowed_dirty":    cfg.AllowedDirty,
		"push_timeout":     cfg.PushTimeout,
	})
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigPath(cmd *cobra.Command) error {
	projectPath := config.ProjectConfigPath()
	if cfgFileFlag != "" {
		projectPath = cfgFileFlag
	}

	printPathStatus(cmd, "project", projectPath)
	printPathStatus(cmd, "legacy ", config.LegacyProjectConfigPath())

	userPath, err := config.UserConfigPath()
	if err == nil {
		printPathStatus(cmd, "user   ", userPath)
	}
	return nil
}

func printPathStatus(cmd *cobra.Command, label, path string) {
	status := "missing"
	if _, err := os.Stat(path); err == nil {
		status = "exists"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s)\n", label, path, status)
}

func runConfigInit(cmd *cobra.Command) error {
	path := config.ProjectConfigPath()
	if cfgFileFlag != "" {
		path = cfgFileFlag
	}

	if _, err := os.Stat(path); err == nil {
		return NewExitErrorWrap(ExitInvalidArguments,
			errors.NewArgumentError(
				fmt.Sprintf("%s already exists", path),
				"Remove it first, or edit it in place"))
	}

	if err := os.WriteFile(path, []byte(config.ConfigTemplate()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
