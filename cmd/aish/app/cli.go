package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/siliconlad/aish/internal/cache"
	"github.com/siliconlad/aish/internal/config"
	"github.com/siliconlad/aish/internal/exec"
	"github.com/siliconlad/aish/internal/llm"
	"github.com/siliconlad/aish/internal/repl"
	"github.com/siliconlad/aish/internal/secrets"
)

// Domain: CLI Application Structure
// This file contains the main CLI application setup with Cobra commands and flags

// App represents the CLI application
type App struct {
	version string
	commit  string
	date    string

	rootCmd *cobra.Command

	// Flags
	configFile  string
	showVersion bool
	noCache     bool
}

// NewApp creates a new CLI application
func NewApp(version, commit, date string) *App {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	app.rootCmd = &cobra.Command{
		Use:   "aish [script]",
		Short: "An LLM-assisted interactive shell",
		Long: `aish is an interactive shell with a natural-language escape hatch.

It runs ordinary commands, pipelines, && sequences and redirections, and
treats a bare double-quoted statement as a prompt for a text-generation
service. When the service answers with a COMMAND: line, the suggested
command is pre-filled into the next prompt.

Examples:
  aish                           # interactive shell
  aish setup.aish                # run a script of statements and exit
  cat err.log | "what broke?"    # pipe data into a prompt (inside aish)`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          app.run,
		SilenceErrors: true,
	}

	app.setupFlags()
	app.setupCommands()

	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// setupFlags sets up all command-line flags
func (a *App) setupFlags() {
	flags := a.rootCmd.Flags()

	flags.StringVarP(&a.configFile, "config", "c", "", "Config file (default: ~/.aish/config.yml)")
	flags.BoolVar(&a.showVersion, "version", false, "Show version information")
	flags.BoolVar(&a.noCache, "no-cache", false, "Disable the LLM suggestion cache")
}

// setupCommands sets up subcommands
func (a *App) setupCommands() {
	a.rootCmd.AddCommand(a.createKeyCommand())
	a.rootCmd.AddCommand(a.createUpdateCommand())
}

// run is the main command handler
func (a *App) run(cmd *cobra.Command, args []string) error {
	if a.showVersion {
		return ShowVersion(a.version, a.commit, a.date)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	gen, closeGen := a.buildGenerator(cfg)
	defer closeGen()

	shell, err := repl.New(cfg, gen)
	if err != nil {
		return err
	}
	defer func() { _ = shell.Close() }()

	if len(args) == 1 {
		return shell.RunScript(args[0])
	}
	return shell.Run()
}

// loadConfig reads the explicit config file, or the default location.
func (a *App) loadConfig() (*config.Config, error) {
	if a.configFile != "" {
		return config.LoadFile(a.configFile)
	}
	return config.Load()
}

// buildGenerator wires the OpenAI client. The API key comes from the
// environment first, then the OS credential store. Without a key the
// generator is nil and LLM statements are rejected at parse time.
func (a *App) buildGenerator(cfg *config.Config) (exec.Generator, func()) {
	noop := func() {}

	key := os.Getenv(secrets.APIKeyName)
	if key == "" {
		if store, err := secrets.NewStore(); err == nil {
			if stored, err := store.APIKey(); err == nil {
				key = stored
			}
		}
	}
	if key == "" {
		return nil, noop
	}

	manager, err := cache.NewManager(cfg.TTL(), a.noCache || cfg.NoCache)
	if err != nil {
		manager = nil
	}

	client, err := llm.NewClient(key, llm.Options{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Cache:     manager,
	})
	if err != nil {
		if manager != nil {
			_ = manager.Close()
		}
		return nil, noop
	}

	closeFn := noop
	if manager != nil {
		closeFn = func() { _ = manager.Close() }
	}
	return client, closeFn
}
