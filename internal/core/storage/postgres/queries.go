package postgres

// SQL for the resample result store.

const (
	queryInsertRun = `
		INSERT INTO resample_runs (
			id, source, preset, bucket_window, per_edge, row_count, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// copySeriesTable and copySeriesColumns feed pq.CopyIn.
	copySeriesTable = "resampled_series"

	querySelectRun = `
		SELECT id, source, preset, bucket_window, per_edge, row_count, started_at, finished_at
		FROM resample_runs
		WHERE id = $1
	`

	// querySelectSeries returns cells in table order: entity, then time, then column.
	querySelectSeries = `
		SELECT entity_id, window_start, column_index, column_name, value
		FROM resampled_series
		WHERE run_id = $1
		ORDER BY entity_id COLLATE "C" ASC, window_start ASC, column_index ASC
	`

	queryListRuns = `
		SELECT id, source, preset, bucket_window, per_edge, row_count, started_at, finished_at
		FROM resample_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	queryTablesExist = `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_name IN ('resample_runs', 'resampled_series')
	`
)

var copySeriesColumns = []string{
	"run_id", "entity_id", "window_start", "seconds", "column_index", "column_name", "value",
}
