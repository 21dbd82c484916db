package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// PostgresSource reads the dataset from a table with region, year, category and
// total_count columns. Every column is read as text so the same normalization
// rules apply as for files.
type PostgresSource struct {
	db    *sqlx.DB
	table string
	query string
}

// NewPostgresSource opens a connection pool for dsn. The table may be schema-qualified.
func NewPostgresSource(dsn, table string) (*PostgresSource, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, &LoadError{Source: table, Err: fmt.Errorf("open database: %w", err)}
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)

	return newPostgresSource(db, table), nil
}

func newPostgresSource(db *sqlx.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table, query: selectQuery(table)}
}

// Load queries the table and normalizes its rows.
func (s *PostgresSource) Load(ctx context.Context) (domain.Table, Stats, error) {
	var rows []domain.RawRecord
	if err := s.db.SelectContext(ctx, &rows, s.query); err != nil {
		return domain.Table{}, Stats{}, &LoadError{Source: s.table, Err: fmt.Errorf("query records: %w", err)}
	}

	n := &normalizer{records: make([]domain.Record, 0, len(rows))}
	for _, raw := range rows {
		n.add(raw)
	}
	return domain.Table{Source: "postgres:" + s.table, Records: n.records}, n.stats, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

func selectQuery(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return fmt.Sprintf(`
		SELECT
			COALESCE(region::text, '')      AS region,
			COALESCE(year::text, '')        AS year,
			COALESCE(category::text, '')    AS category,
			COALESCE(total_count::text, '') AS total_count
		FROM %s
		ORDER BY region, year, category`, strings.Join(parts, "."))
}
