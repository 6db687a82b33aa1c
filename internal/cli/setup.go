package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/roach88/memberbridge/internal/config"
	"github.com/roach88/memberbridge/internal/docstore"
	"github.com/roach88/memberbridge/internal/relstore"
)

// newLogger builds the process logger from config: JSON to stderr for
// machines, console writer for humans.
func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", cfg.Log.Level, err)
	}

	var w io.Writer = os.Stderr
	if !cfg.Log.JSON {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl), nil
}

// openStores opens both adapters from config. The returned closer
// shuts them down in reverse order.
func openStores(cfg *config.Config, log zerolog.Logger) (*relstore.Store, *docstore.Store, func(), error) {
	rel, err := relstore.Open(cfg.Relational.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open relational store: %w", err)
	}

	doc, err := docstore.Open(docstore.Config{
		Path:       cfg.Document.Path,
		SyncWrites: true,
		Logger:     &log,
	})
	if err != nil {
		rel.Close()
		return nil, nil, nil, fmt.Errorf("open document store: %w", err)
	}

	closer := func() {
		if err := doc.Close(); err != nil {
			log.Error().Err(err).Msg("closing document store")
		}
		if err := rel.Close(); err != nil {
			log.Error().Err(err).Msg("closing relational store")
		}
	}
	return rel, doc, closer, nil
}
