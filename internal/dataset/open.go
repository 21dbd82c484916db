package dataset

import (
	"github.com/couchcryptid/crime-forecast-dashboard/internal/config"
)

// Open returns the source selected by cfg: the Postgres table when DATASET_DSN
// is set, the file at DATASET_PATH otherwise. Callers should close sources that
// implement io.Closer.
func Open(cfg *config.Config) (Source, error) {
	if cfg.DatasetDSN != "" {
		return NewPostgresSource(cfg.DatasetDSN, cfg.DatasetTable)
	}
	return NewFileSource(cfg.DatasetPath), nil
}
