package runtime

import (
	"log/slog"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/storage"
)

// Deps holds the collaborators shared by every runtime.
type Deps struct {
	Logger  *slog.Logger
	Catalog catalog.Catalog
	// Postgres is the relational target used by SQL runtimes.
	Postgres postgres.Config
	// Storage is the object store for artifacts and file inputs. May be nil.
	Storage storage.ObjectStore
	// WorkDir is the parent directory for per-run working files.
	WorkDir string
	// Commands maps a function kind to the command line of its external tool.
	Commands map[string][]string
}

// LoggerOrDiscard returns d.Logger or a discard logger.
func (d Deps) LoggerOrDiscard() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}
