package job

import (
	"context"
	"fmt"

	"github.com/tse-eval/resampler/internal/core/config"
	"github.com/tse-eval/resampler/internal/core/series"
	"github.com/tse-eval/resampler/internal/ingestion"
)

// SourceFor builds the input source described by in, wrapped in the snapshot
// cache when in.CachePath is set. Database handles are opened per load.
func SourceFor(in config.InputConfig) (ingestion.Source, error) {
	var src ingestion.Source
	switch in.Type {
	case config.InputSQLite, config.InputPostgres:
		driver, dsn := ingestion.DriverSQLite, in.Path
		if in.Type == config.InputPostgres {
			driver, dsn = ingestion.DriverPostgres, in.DSN
		}
		query := in.EffectiveQuery()
		src = ingestion.SourceFunc(func(ctx context.Context) (*series.Table, error) {
			db, err := ingestion.OpenDatabase(ctx, driver, dsn)
			if err != nil {
				return nil, err
			}
			defer db.Close()
			return (&ingestion.SQLSource{DB: db, Query: query}).Load(ctx)
		})
	case config.InputEdge:
		src = ingestion.EdgeDataSource{Path: in.Path}
	case config.InputLoop:
		src = ingestion.LoopDataSource{Path: in.Path}
	default:
		return nil, fmt.Errorf("unsupported input type %q", in.Type)
	}
	return ingestion.CachedSource{Source: src, Path: in.CachePath}, nil
}

// SourceName identifies the input in run records.
func SourceName(in config.InputConfig) string {
	switch in.Type {
	case config.InputPostgres:
		if in.Table != "" && in.Query == "" {
			return in.Type + ":" + in.Table
		}
		return in.Type + ":query"
	default:
		return in.Type + ":" + in.Path
	}
}
