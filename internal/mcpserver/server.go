// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oascombine as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"regexp"
	"strconv"

	"github.com/erraggy/oascombine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `oascombine MCP server: combines several Swagger 2.0 or OpenAPI 3.x documents into one dereferenced document.

Configuration: defaults are configurable via OASCOMBINE_* environment variables set in your MCP client config.

Key settings:
- OASCOMBINE_CONTINUE_ON_ERROR (default: false): skip unreachable or invalid sources instead of failing
- OASCOMBINE_PATH_STRATEGY (default: fail): path collision strategy (fail, accept-left, accept-right)
- OASCOMBINE_DEFINITION_STRATEGY (default: fail): definition collision strategy
- OASCOMBINE_MAX_SOURCES (default: 20): maximum number of sources per call
- OASCOMBINE_TIMEOUT (default: 2m): time limit of one combine call
- OASCOMBINE_ALLOW_PRIVATE_IPS (default: false): allow URL sources on private networks`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oascombine", Version: oascombine.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "combine",
		Description: "Combine OpenAPI Specification documents into one fully dereferenced document. Each source is given as file, url or inline content and can be filtered (only/exclude path patterns such as /pets/** or /pet.put), renamed (paths, tags, security schemes), tagged, secured and prefixed with a base path before merging. All sources must share a dialect (Swagger 2.0 or OpenAPI 3.x). Path collisions fail unless path_strategy is accept-left or accept-right. Use continue_on_error to skip unreachable or invalid sources; skipped sources are reported. Use output to write to a file instead of returning inline.",
	}, handleCombine)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

func formatCount(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
