// Package app provides application bootstrapping with Cobra, Viper and
// Pflag: CLI command definition, config file and environment loading, and
// flag binding via the functional options pattern.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"
	"github.com/kart-io/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CliOptions is implemented by option aggregates that expose flags.
type CliOptions interface {
	// AddFlags registers flags on the given FlagSet.
	AddFlags(fs *pflag.FlagSet)

	// Validate checks the final option values.
	Validate() error
}

// RunFunc is the application's run function.
type RunFunc func() error

// App is the application skeleton.
type App struct {
	name        string
	description string
	options     CliOptions
	runFunc     RunFunc
	cmd         *cobra.Command
	configFile  string
	noConfig    bool
}

// Option configures an App.
type Option func(*App)

// WithName sets the application name.
func WithName(name string) Option {
	return func(a *App) { a.name = name }
}

// WithDescription sets the long description.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions sets the CLI options aggregate.
func WithOptions(opts CliOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the run function.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithNoConfig disables config file loading.
func WithNoConfig() Option {
	return func(a *App) { a.noConfig = true }
}

// NewApp creates an application instance.
func NewApp(opts ...Option) *App {
	a := &App{
		name: filepath.Base(os.Args[0]),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.buildCommand()
	return a
}

// Run executes the application, exiting non-zero on error.
func (a *App) Run() {
	if err := a.cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command returns the underlying cobra command.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			version.PrintAndExitIfRequested()

			if !a.noConfig {
				if err := a.loadConfig(cmd.Flags()); err != nil {
					return err
				}
			}

			if a.options != nil {
				if err := a.options.Validate(); err != nil {
					return fmt.Errorf("invalid options: %w", err)
				}
			}

			if a.runFunc != nil {
				return a.runFunc()
			}
			return nil
		},
	}

	fs := cmd.Flags()
	if a.options != nil {
		a.options.AddFlags(fs)
	}
	if !a.noConfig {
		fs.StringVarP(&a.configFile, "config", "c", "", "Path to the configuration file")
	}
	version.AddFlags(fs)

	a.cmd = cmd
}

// loadConfig reads the config file and environment, then overrides flag
// defaults (explicitly set flags always win).
func (a *App) loadConfig(fs *pflag.FlagSet) error {
	v := viper.New()

	if a.configFile != "" {
		v.SetConfigFile(a.configFile)
	} else {
		v.SetConfigName(a.name)
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(filepath.Join("/etc", a.name))
	}

	v.SetEnvPrefix(strings.ReplaceAll(strings.ToUpper(a.name), "-", "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		logger.Infow("Loaded configuration", "file", v.ConfigFileUsed())
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Infow("Configuration file changed", "file", e.Name)
		})
		v.WatchConfig()
	}

	// Apply config/env values to flags the user did not set explicitly.
	var applyErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if applyErr != nil || f.Changed {
			return
		}
		if !v.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			applyErr = fmt.Errorf("apply config value for --%s: %w", f.Name, err)
		}
	})
	return applyErr
}
