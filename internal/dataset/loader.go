package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02-01-2006",
}

// LoadCSV reads the sales file from disk and builds a Store.
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	store, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("rows", store.Len()).
		Strs("dimensions", store.Schema().Dimensions).
		Strs("measures", store.Schema().Measures).
		Msg("dataset loaded")
	return store, nil
}

// ParseCSV reads CSV content with a header row and classifies columns:
// the first column that parses as a date becomes the record date,
// columns whose first non-empty value parses as a number become
// measures, everything else becomes a dimension. Rows with an
// unparseable date are skipped with a warning rather than aborting the
// whole load.
func ParseCSV(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	rows, err := readAll(reader)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset has a header but no rows")
	}

	dateCol, dimCols, measureCols := classifyColumns(header, rows)
	if dateCol < 0 {
		return nil, fmt.Errorf("no date column found in header %v", header)
	}
	if len(measureCols) == 0 {
		return nil, fmt.Errorf("no numeric column found in header %v", header)
	}

	records := make([]Record, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if len(row) != len(header) {
			skipped++
			continue
		}
		date, ok := parseDate(row[dateCol])
		if !ok {
			skipped++
			continue
		}
		rec := Record{
			Date:       date,
			Dimensions: make(map[string]string, len(dimCols)),
			Measures:   make(map[string]float64, len(measureCols)),
		}
		for _, c := range dimCols {
			rec.Dimensions[header[c]] = strings.TrimSpace(row[c])
		}
		for _, c := range measureCols {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				skipped++
				rec.Measures = nil
				break
			}
			rec.Measures[header[c]] = v
		}
		if rec.Measures == nil {
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("malformed rows dropped during load")
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no valid rows in dataset")
	}

	dims := make([]string, 0, len(dimCols))
	for _, c := range dimCols {
		dims = append(dims, header[c])
	}
	measures := make([]string, 0, len(measureCols))
	for _, c := range measureCols {
		measures = append(measures, header[c])
	}
	return NewStore(records, dims, measures), nil
}

func readAll(reader *csv.Reader) ([][]string, error) {
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			// Keep what parsed so far; one bad row should not drop the file.
			log.Warn().Err(err).Msg("csv read error, row skipped")
			continue
		}
		rows = append(rows, row)
	}
}

// classifyColumns inspects the first data row of each column.
func classifyColumns(header []string, rows [][]string) (dateCol int, dimCols, measureCols []int) {
	dateCol = -1
	for c := range header {
		sample := firstValue(rows, c)
		if _, ok := parseDate(sample); ok && dateCol < 0 {
			dateCol = c
			continue
		}
		if _, err := strconv.ParseFloat(sample, 64); err == nil {
			measureCols = append(measureCols, c)
			continue
		}
		dimCols = append(dimCols, c)
	}
	return dateCol, dimCols, measureCols
}

func firstValue(rows [][]string, col int) string {
	for _, row := range rows {
		if col < len(row) {
			if v := strings.TrimSpace(row[col]); v != "" {
				return v
			}
		}
	}
	return ""
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
