package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/barflow/barpar/internal/domain"
)

// ParseError marks a malformed input row. It is fatal for the file: the
// caller aborts the run instead of silently dropping rows.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s line %d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// timestampLayouts are the formats the POS exports have been seen to use.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2/1/2006 15:04",
	"2/1/06 15:04",
	time.RFC3339,
}

// Reader parses POS consumption export CSVs into ConsumptionRecords.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadFile parses a single export file.
func (r *Reader) ReadFile(path string) ([]domain.ConsumptionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	records, err := r.Read(file, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ReadDir parses every CSV in a directory, in name order.
func (r *Reader) ReadDir(dir string) ([]domain.ConsumptionRecord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}

	var all []domain.ConsumptionRecord
	for _, path := range paths {
		records, err := r.ReadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Read parses an export stream. The header row drives column mapping so the
// exports can reorder or rename columns within known variants.
func (r *Reader) Read(src io.Reader, name string) ([]domain.ConsumptionRecord, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header of %s: %w", name, err)
	}

	colIndex := func(names ...string) int {
		targets := make(map[string]struct{}, len(names))
		for _, n := range names {
			targets[normalizeColumnName(n)] = struct{}{}
		}
		for i, h := range header {
			if _, ok := targets[normalizeColumnName(h)]; ok {
				return i
			}
		}
		return -1
	}

	idxTimestamp := colIndex("timestamp", "date", "transaction date")
	idxBar := colIndex("bar_name", "bar", "outlet")
	idxBrand := colIndex("brand_name", "brand")
	idxOpening := colIndex("opening_balance", "opening balance")
	idxPurchase := colIndex("purchase")
	idxConsumed := colIndex("consumed", "consumed_volume", "consumption")
	idxClosing := colIndex("closing_balance", "closing balance")

	if idxTimestamp < 0 || idxBar < 0 || idxBrand < 0 || idxConsumed < 0 {
		return nil, &ParseError{
			File: name,
			Line: 1,
			Err:  fmt.Errorf("missing required columns (timestamp, bar_name, brand_name, consumed); got header %v", header),
		}
	}

	var records []domain.ConsumptionRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{File: name, Line: line + 1, Err: err}
		}
		line++

		get := func(idx int) string {
			if idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		ts, err := parseTimestamp(get(idxTimestamp))
		if err != nil {
			return nil, &ParseError{File: name, Line: line, Err: err}
		}

		bar := get(idxBar)
		brand := get(idxBrand)
		if bar == "" || brand == "" {
			return nil, &ParseError{File: name, Line: line, Err: fmt.Errorf("empty bar or brand name")}
		}

		consumed, err := parseVolume(get(idxConsumed))
		if err != nil {
			return nil, &ParseError{File: name, Line: line, Err: fmt.Errorf("invalid consumed volume: %w", err)}
		}

		records = append(records, domain.ConsumptionRecord{
			Timestamp:      ts,
			BarName:        bar,
			BrandName:      brand,
			OpeningBalance: parseOptionalFloat(get(idxOpening)),
			Purchase:       parseOptionalFloat(get(idxPurchase)),
			Consumed:       consumed,
			ClosingBalance: parseOptionalFloat(get(idxClosing)),
		})
	}

	return records, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func parseVolume(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	value = strings.ReplaceAll(value, ",", "")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative volume %v", f)
	}
	return f, nil
}

// parseOptionalFloat is lenient: balance columns are informational and some
// exports leave them blank.
func parseOptionalFloat(value string) float64 {
	if value == "" {
		return 0
	}
	value = strings.ReplaceAll(value, ",", "")
	f, _ := strconv.ParseFloat(value, 64)
	return f
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}
