package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/erraggy/oascombine/combiner"
	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/internal/pathutil"
	"github.com/erraggy/oascombine/merger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type combineInput struct {
	Sources            []sourceInput `json:"sources"                       jsonschema:"OAS documents to combine, in merge order (minimum 1)"`
	ContinueOnError    *bool         `json:"continue_on_error,omitempty"   jsonschema:"Skip unreachable or invalid sources instead of failing"`
	PathStrategy       string        `json:"path_strategy,omitempty"       jsonschema:"Strategy for path collisions: fail or accept-left or accept-right"`
	DefinitionStrategy string        `json:"definition_strategy,omitempty" jsonschema:"Strategy for definition collisions: fail or accept-left or accept-right"`
	Primary            int           `json:"primary,omitempty"             jsonschema:"Index of the source whose info and top-level metadata are kept (default 0)"`
	Format             string        `json:"format,omitempty"              jsonschema:"Output format: yaml or json (default yaml)"`
	Output             string        `json:"output,omitempty"              jsonschema:"File path to write the combined document. If omitted the result is returned inline."`
}

type combineWarning struct {
	Category string `json:"category"`
	Path     string `json:"path,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

type skippedSource struct {
	Index    int    `json:"index"`
	Location string `json:"location"`
	Error    string `json:"error"`
}

type combineOutput struct {
	Dialect        string           `json:"dialect"`
	SourceCount    int              `json:"source_count"`
	PathCount      int              `json:"path_count"`
	OperationCount int              `json:"operation_count"`
	ReferenceCount int              `json:"reference_count"`
	Skipped        []skippedSource  `json:"skipped,omitempty"`
	Warnings       []combineWarning `json:"warnings,omitempty"`
	WrittenTo      string           `json:"written_to,omitempty"`
	Document       string           `json:"document,omitempty"`
	Summary        string           `json:"summary"`
}

func handleCombine(ctx context.Context, _ *mcp.CallToolRequest, input combineInput) (*mcp.CallToolResult, combineOutput, error) {
	if len(input.Sources) == 0 {
		return errResult(fmt.Errorf("at least 1 source is required")), combineOutput{}, nil
	}
	if len(input.Sources) > cfg.MaxSources {
		return errResult(fmt.Errorf("too many sources: got %d, maximum is %d; set OASCOMBINE_MAX_SOURCES to increase",
			len(input.Sources), cfg.MaxSources)), combineOutput{}, nil
	}

	opts, format, err := combineOptions(input)
	if err != nil {
		return errResult(err), combineOutput{}, nil
	}
	sources, l, err := buildSources(input.Sources)
	if err != nil {
		return errResult(err), combineOutput{}, nil
	}
	opts = append(opts, combiner.WithLoader(l))

	var outPath string
	if input.Output != "" {
		files := make([]string, 0, len(input.Sources))
		for _, src := range input.Sources {
			files = append(files, src.File)
		}
		if outPath, err = pathutil.OutputFile(input.Output, files...); err != nil {
			return errResult(fmt.Errorf("invalid output path: %w", err)), combineOutput{}, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	result, err := combiner.Combine(ctx, sources, opts...)
	if err != nil {
		return errResult(err), combineOutput{}, nil
	}

	output := combineOutput{
		Dialect:        result.Dialect.String(),
		SourceCount:    result.Stats.Sources,
		PathCount:      result.Stats.Paths,
		OperationCount: result.Stats.Operations,
		ReferenceCount: result.Stats.References,
	}
	output.Skipped = makeSlice[skippedSource](len(result.Skipped))
	for _, s := range result.Skipped {
		output.Skipped = append(output.Skipped, skippedSource{Index: s.Index, Location: s.Location, Error: sanitizeError(s.Err)})
	}
	output.Warnings = makeSlice[combineWarning](len(result.Warnings))
	for _, w := range result.Warnings {
		if w.Category == merger.WarnSourceSkipped {
			continue
		}
		output.Warnings = append(output.Warnings, combineWarning{
			Category: string(w.Category),
			Path:     w.Path,
			Source:   w.Source,
			Message:  w.Message,
		})
	}
	output.Summary = buildCombineSummary(output)

	data, err := document.Encode(result.Document, format)
	if err != nil {
		return errResult(err), combineOutput{}, nil
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0o600); err != nil {
			return errResult(fmt.Errorf("failed to write output file: %w", err)), combineOutput{}, nil
		}
		output.WrittenTo = outPath
	} else {
		output.Document = string(data)
	}

	return nil, output, nil
}

// combineOptions maps the tool input, falling back to the server defaults,
// onto combiner options.
func combineOptions(input combineInput) ([]combiner.Option, document.Format, error) {
	format := document.FormatYAML
	if input.Format != "" {
		f, err := document.ParseFormat(input.Format)
		if err != nil {
			return nil, document.FormatUnknown, err
		}
		format = f
	}

	pathStrategy, err := strategyOrDefault(input.PathStrategy, cfg.PathStrategy)
	if err != nil {
		return nil, document.FormatUnknown, fmt.Errorf("invalid path_strategy: %w", err)
	}
	defStrategy, err := strategyOrDefault(input.DefinitionStrategy, cfg.DefinitionStrategy)
	if err != nil {
		return nil, document.FormatUnknown, fmt.Errorf("invalid definition_strategy: %w", err)
	}

	continueOnError := cfg.ContinueOnError
	if input.ContinueOnError != nil {
		continueOnError = *input.ContinueOnError
	}

	return []combiner.Option{
		combiner.WithContinueOnError(continueOnError),
		combiner.WithPathStrategy(pathStrategy),
		combiner.WithDefinitionStrategy(defStrategy),
		combiner.WithPrimary(input.Primary),
		combiner.WithConcurrency(cfg.Concurrency),
	}, format, nil
}

func strategyOrDefault(s string, fallback merger.Strategy) (merger.Strategy, error) {
	if s == "" {
		if fallback == "" {
			return merger.StrategyFail, nil
		}
		return fallback, nil
	}
	return merger.ParseStrategy(s)
}

func buildCombineSummary(output combineOutput) string {
	summary := "Combined " + formatCount(output.SourceCount, "source") + " into a " + output.Dialect + " document"
	summary += " with " + formatCount(output.PathCount, "path")
	summary += " and " + formatCount(output.OperationCount, "operation") + "."

	if output.ReferenceCount > 0 {
		summary += " " + formatCount(output.ReferenceCount, "reference") + " resolved."
	}
	if len(output.Skipped) > 0 {
		summary += " " + formatCount(len(output.Skipped), "source") + " skipped."
	}
	if len(output.Warnings) > 0 {
		summary += " " + formatCount(len(output.Warnings), "warning") + "."
	}
	return summary
}
