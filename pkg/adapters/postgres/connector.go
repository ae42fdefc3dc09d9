package postgres

import (
	"context"
	"log/slog"
)

// Connector opens a scoped connection to the target. The caller closes the
// returned adapter.
type Connector interface {
	Connect(ctx context.Context) (*Adapter, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context) (*Adapter, error)

// Connect implements Connector.
func (f ConnectorFunc) Connect(ctx context.Context) (*Adapter, error) {
	return f(ctx)
}

// NewConnector returns a Connector that opens a fresh pool for cfg on every
// call.
func NewConnector(cfg Config, logger *slog.Logger) Connector {
	return ConnectorFunc(func(ctx context.Context) (*Adapter, error) {
		return Open(ctx, cfg, logger)
	})
}
