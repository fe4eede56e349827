package commands

import (
	"fmt"
	"os"

	"github.com/erraggy/oascombine/combiner"
	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/internal/cliutil"
	"github.com/erraggy/oascombine/internal/pathutil"
	"github.com/erraggy/oascombine/merger"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/erraggy/oascombine/transformer"
	"github.com/spf13/cobra"
)

// combineFlags holds the flags that apply to positional sources only.
type combineFlags struct {
	ConfigFile string
	Output     string
	Base       string
	Only       []string
	Exclude    []string
	AddTags    []string
	Quiet      bool
}

func newCombineCommand(a *app) *cobra.Command {
	flags := &combineFlags{}
	cmd := &cobra.Command{
		Use:   "combine [flags] [location...]",
		Short: "Combine OpenAPI documents",
		Long: `Combine Swagger 2.0 or OpenAPI 3.x documents into one fully dereferenced document.

Sources are given either as locations (files or URLs) or through a combine
configuration file whose apis list carries per-source filters, renames,
tags, security and base paths. The remaining top-level keys of the
configuration file override the metadata of the combined document.

Collision strategies:
  fail          Fail on any collision (default)
  accept-left   Keep the first value
  accept-right  Keep the last value

Exit codes:
  2  invalid configuration
  3  unresolved collision
  4  unresolvable reference
  5  unreachable or invalid source`,
		Example: `  oascombine combine -o api.yaml pets.yaml https://example.com/store.json
  oascombine combine --config combine.yaml --format json
  oascombine combine --base /v1 --exclude '/internal/**' --continue-on-error a.yaml b.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombine(cmd, a, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.ConfigFile, "config", "c", "", "combine configuration file")
	f.StringVarP(&flags.Output, "output", "o", "", "output file path (default: stdout)")
	f.StringVar(&flags.Base, "base", "", "base path prepended to every path of the positional sources")
	f.StringSliceVar(&flags.Only, "only", nil, "path patterns to keep in the positional sources")
	f.StringSliceVar(&flags.Exclude, "exclude", nil, "path patterns to drop from the positional sources")
	f.StringSliceVar(&flags.AddTags, "add-tags", nil, "tags appended to every operation of the positional sources")
	f.BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress the summary and warnings")

	f.String("format", "", "output format: json or yaml (default: from the output extension, else yaml)")
	f.Bool("continue-on-error", false, "skip unreachable or invalid sources")
	f.String("path-strategy", string(merger.StrategyFail), "collision strategy for paths")
	f.String("definition-strategy", string(merger.StrategyFail), "collision strategy for definitions")
	f.Int("primary", 0, "index of the source whose metadata is kept")
	f.Int("concurrency", 0, "number of sources processed at once (default: number of CPUs)")
	f.Int("max-ref-depth", 0, "maximum nesting of $ref resolution (default: 100)")
	for key, name := range map[string]string{
		"format":              "format",
		"continue_on_error":   "continue-on-error",
		"path_strategy":       "path-strategy",
		"definition_strategy": "definition-strategy",
		"primary":             "primary",
		"concurrency":         "concurrency",
		"max_ref_depth":       "max-ref-depth",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(name))
	}
	return cmd
}

func runCombine(cmd *cobra.Command, a *app, flags *combineFlags, args []string) error {
	v := a.v
	logger := NewZerologAdapter(a.logger)

	format, err := outputFormat(v.GetString("format"), flags.Output)
	if err != nil {
		return err
	}
	pathStrategy, err := merger.ParseStrategy(v.GetString("path_strategy"))
	if err != nil {
		return err
	}
	defStrategy, err := merger.ParseStrategy(v.GetString("definition_strategy"))
	if err != nil {
		return err
	}

	opts := []combiner.Option{
		combiner.WithPathStrategy(pathStrategy),
		combiner.WithDefinitionStrategy(defStrategy),
		combiner.WithPrimary(v.GetInt("primary")),
		combiner.WithLogger(logger),
	}
	// Left unset, the configuration file's continueOnError applies.
	if v.IsSet("continue_on_error") {
		opts = append(opts, combiner.WithContinueOnError(v.GetBool("continue_on_error")))
	}
	if n := v.GetInt("concurrency"); n > 0 {
		opts = append(opts, combiner.WithConcurrency(n))
	}
	if n := v.GetInt("max_ref_depth"); n > 0 {
		opts = append(opts, combiner.WithMaxRefDepth(n))
	}

	switch {
	case flags.ConfigFile != "" && len(args) > 0:
		return &oaserrors.ConfigError{Option: "config", Message: "locations and --config are mutually exclusive"}
	case flags.ConfigFile != "":
		if flags.Base != "" || len(flags.Only) > 0 || len(flags.Exclude) > 0 || len(flags.AddTags) > 0 {
			return &oaserrors.ConfigError{Option: "config", Message: "--base, --only, --exclude and --add-tags apply to locations only"}
		}
		opts = append(opts, combiner.WithConfigFile(flags.ConfigFile))
	case len(args) > 0:
		sources := make([]combiner.Source, 0, len(args))
		for _, location := range args {
			sources = append(sources, combiner.Source{Location: location, Config: transformer.Config{
				Location: location,
				Paths:    transformer.FilterConfig{Only: flags.Only, Exclude: flags.Exclude},
				AddTags:  flags.AddTags,
				Base:     flags.Base,
			}})
		}
		opts = append(opts, combiner.WithSources(sources...))
	default:
		return &oaserrors.ConfigError{Option: "sources", Message: "specify locations or --config"}
	}

	var outPath string
	if flags.Output != "" {
		inputs := append([]string{flags.ConfigFile}, args...)
		if outPath, err = pathutil.OutputFile(flags.Output, inputs...); err != nil {
			return &oaserrors.ConfigError{Option: "output", Value: flags.Output, Cause: err}
		}
	}

	result, err := combiner.CombineWithOptions(cmd.Context(), opts...)
	if err != nil {
		return err
	}

	data, err := document.Encode(result.Document, format)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
	} else {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if !flags.Quiet {
		printSummary(cmd, result, flags.Output)
	}
	return nil
}

// outputFormat picks the explicit format, else the output file's
// extension, else YAML.
func outputFormat(explicit, output string) (document.Format, error) {
	if explicit != "" {
		return document.ParseFormat(explicit)
	}
	if f := document.FormatFromPath(output); f != document.FormatUnknown {
		return f, nil
	}
	return document.FormatYAML, nil
}

func printSummary(cmd *cobra.Command, result *combiner.Result, output string) {
	w := cmd.ErrOrStderr()
	s := result.Stats
	cliutil.Writef(w, "Combined %d of %d sources (%s): %d paths, %d operations, %d references resolved\n",
		s.Sources, s.Sources+s.Skipped, result.Dialect, s.Paths, s.Operations, s.References)
	for _, skipped := range result.Skipped {
		cliutil.Writef(w, "  skipped: %v\n", skipped.Err)
	}
	for _, warning := range result.Warnings {
		if warning.Category == merger.WarnSourceSkipped {
			continue
		}
		cliutil.Writef(w, "  %s [%s]: %s\n", warning.Severity, warning.Category, warning.Message)
	}
	if output != "" {
		cliutil.Writef(w, "Output written to: %s\n", output)
	}
}
