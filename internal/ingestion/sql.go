package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/tse-eval/resampler/internal/core/series"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Tables written by the FCD collection apps.
const (
	TraversalMetricsTable = "traversal_metrics"
	FCDRecordsTable       = "fcd_records"
)

// QueryFor returns the default query for a known table, ordered by time.
func QueryFor(table string) string {
	return fmt.Sprintf("SELECT * FROM %s ORDER BY timeStamp", table)
}

// DefaultLabels are the identifier columns of FCD tables.
func DefaultLabels() []string {
	return []string{"connectionID", "nextConnectionID", "vehID"}
}

// OpenDatabase opens and pings a database handle.
func OpenDatabase(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}

// SQLSource reads a query result into a table indexed by TimeColumn.
type SQLSource struct {
	DB    *sql.DB
	Query string
	// TimeColumn defaults to timeStamp, TimeUnit to nanoseconds.
	TimeColumn string
	TimeUnit   time.Duration
	// Labels defaults to DefaultLabels.
	Labels []string
}

func (s *SQLSource) Load(ctx context.Context) (*series.Table, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("sql source: database handle is nil")
	}
	layout := Layout{
		TimeColumn: s.TimeColumn,
		TimeUnit:   s.TimeUnit,
		Labels:     s.Labels,
	}
	if layout.TimeColumn == "" {
		layout.TimeColumn = "timeStamp"
	}
	if layout.TimeUnit <= 0 {
		layout.TimeUnit = time.Nanosecond
	}
	if layout.Labels == nil {
		layout.Labels = DefaultLabels()
	}

	start := time.Now()
	rows, err := s.DB.QueryContext(ctx, s.Query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var scanErr error
	records := func(yield func(Record, error) bool) {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				scanErr = fmt.Errorf("scan row: %w", err)
				return
			}
			rec := make(Record, len(columns))
			for i, name := range columns {
				rec[i] = Attr{Name: name, Value: formatValue(values[i])}
			}
			if !yield(rec, nil) {
				return
			}
		}
	}

	tbl, err := BuildTable(ctx, records, layout)
	if err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	slog.Info("[Ingestion] Read database",
		"rows", tbl.Len(),
		"columns", len(columns),
		"took", time.Since(start),
	)
	return tbl, nil
}

// formatValue renders a driver value; NULL becomes the empty string.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return strconv.FormatInt(x.UnixNano(), 10)
	default:
		return fmt.Sprint(x)
	}
}
