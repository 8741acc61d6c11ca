package safe

import (
	"context"
	"io"

	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// Close closes the closer and logs any failure instead of returning it
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close resource", "error", err.Error())
	}
}
