package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// FileSource reads the dataset from a delimited text file or an Excel workbook.
// The format is chosen from the file extension; .xlsx reads the first sheet,
// .tsv is tab-delimited and everything else is parsed as CSV.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and normalizes the file. The file is re-read on every call.
func (s *FileSource) Load(ctx context.Context) (domain.Table, Stats, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, Stats{}, err
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(s.Path)
	case ".tsv":
		rows, err = readDelimited(s.Path, '\t')
	default:
		rows, err = readDelimited(s.Path, ',')
	}
	if err != nil {
		return domain.Table{}, Stats{}, &LoadError{Source: s.Path, Err: err}
	}

	table, stats, err := normalizeRows(s.Path, rows)
	if err != nil {
		return domain.Table{}, Stats{}, &LoadError{Source: s.Path, Err: err}
	}
	return table, stats, nil
}

func normalizeRows(source string, rows [][]string) (domain.Table, Stats, error) {
	if len(rows) == 0 {
		return domain.Table{}, Stats{}, errors.New("file is empty")
	}
	cols, err := resolveColumns(rows[0])
	if err != nil {
		return domain.Table{}, Stats{}, err
	}

	n := &normalizer{records: make([]domain.Record, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		n.add(cols.raw(row))
	}
	return domain.Table{Source: source, Records: n.records}, n.stats, nil
}

func readDelimited(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseDelimited(f, comma)
}

func parseDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited file: %w", err)
	}
	return rows, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
