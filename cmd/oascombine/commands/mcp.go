package commands

import (
	"context"

	"github.com/erraggy/oascombine/internal/mcpserver"
)

// runMCP is replaced in tests.
var runMCP = func(ctx context.Context) error {
	return mcpserver.Run(ctx)
}
