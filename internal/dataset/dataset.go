// Package dataset loads the crime-statistics table from a file or a database and
// normalizes it into canonical columns.
package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// Canonical column names.
const (
	ColumnRegion     = "region"
	ColumnYear       = "year"
	ColumnCategory   = "category"
	ColumnTotalCount = "total_count"
)

// columnAliases maps lower-cased, trimmed source headers to canonical names.
var columnAliases = map[string]string{
	"area_name": ColumnRegion,
	"state":     ColumnRegion,
	"region":    ColumnRegion,

	"year": ColumnYear,

	"group_name":  ColumnCategory,
	"crime_group": ColumnCategory,
	"category":    ColumnCategory,

	"trial_of_violent_crimes_by_courts_total": ColumnTotalCount,
	"total_crimes": ColumnTotalCount,
	"total_count":  ColumnTotalCount,
}

var requiredColumns = []string{ColumnRegion, ColumnYear, ColumnCategory, ColumnTotalCount}

// Source produces the normalized dataset.
type Source interface {
	Load(ctx context.Context) (domain.Table, Stats, error)
}

// Stats describes what normalization did to the source rows.
type Stats struct {
	RowsRead     int
	RowsSkipped  int
	CountsZeroed int
}

// LoadError reports a dataset that cannot be used at all: the source is missing or
// unreadable, or required columns cannot be located.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// columnIndex locates each canonical column in a header row.
type columnIndex map[string]int

// resolveColumns trims header cells, maps them through the alias table and returns
// the position of every required column. The first matching header wins.
func resolveColumns(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(requiredColumns))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		canonical, ok := columnAliases[name]
		if !ok {
			continue
		}
		if _, dup := idx[canonical]; !dup {
			idx[canonical] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) raw(row []string) domain.RawRecord {
	return domain.RawRecord{
		Region:   cell(row, c[ColumnRegion]),
		Year:     cell(row, c[ColumnYear]),
		Category: cell(row, c[ColumnCategory]),
		Count:    cell(row, c[ColumnTotalCount]),
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// normalizer accumulates normalized records and their stats.
type normalizer struct {
	records []domain.Record
	stats   Stats
}

func (n *normalizer) add(raw domain.RawRecord) {
	n.stats.RowsRead++
	rec, zeroed, ok := domain.NormalizeRecord(raw)
	if !ok {
		n.stats.RowsSkipped++
		return
	}
	if zeroed {
		n.stats.CountsZeroed++
	}
	n.records = append(n.records, rec)
}
