package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spboyer/benchboard/internal/projectconfig"
	"github.com/spboyer/benchboard/internal/store"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	dataDir string
	strict  bool
}

func newRootCommand() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "benchboard",
		Short: "Benchboard - leaderboards for benchmark evaluation runs",
		Long: `Benchboard ranks model submissions on benchmark tasks.

It reads task definitions and evaluation runs from disk, ranks models per
task and across task selections, and serves the leaderboards as a web site
and JSON API.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&g.dataDir, "data", "", "Data root containing tasks/ and eval_runs/ (overrides "+projectconfig.FileName+")")
	cmd.PersistentFlags().BoolVar(&g.strict, "strict", false, "Fail on unreadable or invalid data files instead of skipping them")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newServeCommand(&g))
	cmd.AddCommand(newTasksCommand(&g))
	cmd.AddCommand(newRankCommand(&g))
	cmd.AddCommand(newAggregateCommand(&g))
	cmd.AddCommand(newValidateCommand(&g))
	cmd.AddCommand(newPullCommand(&g))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads .benchboard.yaml from the working directory upwards and
// applies the persistent flag overrides.
func (g *globalFlags) loadConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := projectconfig.Load(wd)
	if err != nil {
		return nil, err
	}
	if g.dataDir != "" {
		abs, err := filepath.Abs(g.dataDir)
		if err != nil {
			return nil, fmt.Errorf("resolving --data: %w", err)
		}
		cfg.Paths.Tasks = filepath.Join(abs, projectconfig.DefaultTasksDir)
		cfg.Paths.EvalRuns = filepath.Join(abs, projectconfig.DefaultEvalRunsDir)
	}
	if g.strict {
		strict := true
		cfg.Validation.Strict = &strict
	}
	return cfg, nil
}

// openStore loads the config and creates the file store it points at.
func (g *globalFlags) openStore() (*projectconfig.ProjectConfig, *store.FileStore, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	fs := store.New(store.Options{
		TasksDir: cfg.TasksDir(),
		RunsDir:  cfg.EvalRunsDir(),
		Strict:   cfg.Strict(),
		Logger:   slog.Default(),
	})
	return cfg, fs, nil
}
