// Package commands provides the cobra command tree of oascombine.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/oascombine"
	"github.com/erraggy/oascombine/internal/cliutil"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes every environment variable the CLI reads.
const envPrefix = "OASCOMBINE"

// settingsName is the base name of the optional settings file.
const settingsName = ".oascombine"

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitConfig    = 2
	ExitCollision = 3
	ExitReference = 4
	ExitSource    = 5
)

// app carries what every command shares: the settings store and the
// logger built once flags are parsed.
type app struct {
	v      *viper.Viper
	logger zerolog.Logger
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := newRootCommand(viper.New(), os.Stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		cliutil.Writef(root.ErrOrStderr(), "Error: %v\n", err)
	}
	return ExitCode(err)
}

func newRootCommand(v *viper.Viper, logOut io.Writer) *cobra.Command {
	a := &app{v: v, logger: zerolog.Nop()}
	var settingsFile string

	cmd := &cobra.Command{
		Use:           "oascombine",
		Short:         "Combine OpenAPI documents into one dereferenced document",
		Version:       oascombine.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := initSettings(v, settingsFile); err != nil {
				return err
			}
			a.logger = newLogger(logOut, v.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default: ./"+settingsName+".yaml or $HOME/"+settingsName+".yaml)")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newCombineCommand(a))
	cmd.AddCommand(newMCPCommand(a))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// initSettings wires OASCOMBINE_* environment variables and reads the
// settings file. A missing default settings file is not an error.
func initSettings(v *viper.Viper, settingsFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return &oaserrors.ConfigError{Option: "settings", Value: settingsFile, Message: "failed to read settings file", Cause: err}
		}
		return nil
	}

	v.SetConfigName(settingsName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return &oaserrors.ConfigError{Option: "settings", Message: "failed to read settings file", Cause: err}
	}
	return nil
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, oaserrors.ErrConfig):
		return ExitConfig
	case errors.Is(err, oaserrors.ErrCollision):
		return ExitCollision
	case errors.Is(err, oaserrors.ErrReference):
		return ExitReference
	case errors.Is(err, oaserrors.ErrSourceUnreachable), errors.Is(err, oaserrors.ErrSourceInvalid):
		return ExitSource
	}
	return ExitFailure
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cliutil.Writef(cmd.OutOrStdout(), "oascombine v%s\n%s\n", oascombine.Version(), oascombine.BuildInfo())
		},
	}
}

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the combine tool over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.Info().Msg("starting MCP server on stdio")
			if err := runMCP(cmd.Context()); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
