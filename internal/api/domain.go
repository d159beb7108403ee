package api

import (
	"github.com/JaimeStill/loadextract/internal/config"
	"github.com/JaimeStill/loadextract/internal/documents"
	"github.com/JaimeStill/loadextract/internal/events"
	"github.com/JaimeStill/loadextract/internal/examples"
)

// Domain holds all domain systems. The worker consumes the same systems as
// the extraction pipeline's queue, event sink, and example source.
type Domain struct {
	Documents documents.System
	Events    events.System
	Examples  examples.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	return &Domain{
		Documents: documents.New(db, runtime.Logger, runtime.Pagination, cfg.Worker.StaleAfter()),
		Events:    events.New(db, runtime.Logger, runtime.Publisher),
		Examples:  examples.New(db, runtime.Logger, cfg.Learning.MaxCorpus),
	}
}
