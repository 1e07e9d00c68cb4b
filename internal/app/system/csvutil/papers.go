// internal/app/system/csvutil/papers.go
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/domain/models"
)

// ErrEmpty is returned for an upload with no header row.
var ErrEmpty = schema.FieldErrors{"file": "the file is empty"}

// PreScanPapersCSV reads a paper import file. The first row must equal
// models.PaperCSVHeader exactly (case and order sensitive) or the whole file
// is rejected before any row is read. Data rows are mapped positionally;
// missing trailing fields are empty and blank lines are skipped. It never
// writes anywhere; row validation is left to the caller.
func PreScanPapersCSV(r io.Reader) ([]models.Paper, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !equalHeader(header, models.PaperCSVHeader) {
		return nil, schema.FieldErrors{
			"header": "header must be exactly " + strings.Join(models.PaperCSVHeader, ","),
		}
	}

	var rows []models.Paper
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if blank(rec) {
			continue
		}
		if len(rows) == MaxRows {
			return nil, schema.FieldErrors{"file": fmt.Sprintf("too many rows (limit %d)", MaxRows)}
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, models.PaperFromRow(rec))
	}
	if len(rows) == 0 {
		return nil, schema.FieldErrors{"file": "no data rows"}
	}
	return rows, nil
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
