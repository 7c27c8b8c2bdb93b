package importer

// parser.go turns the raw bytes of an uploaded file into a Batch.
//
// Parsing and validation run in one pass, line by line: each non-blank data
// line yields exactly one Customer or one RowError, never both, never
// neither. The header's declared order binds values positionally; the
// canonical schema order is not used to re-order columns.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aurumcrm/customer-import/internal/schema"
)

// ErrEmptyFile is returned when the uploaded file contains no header row.
var ErrEmptyFile = errors.New("empty file: no header row found")

// Parse parses and validates the full textual content of an uploaded file
// against the given field catalog. It returns a fresh Batch carrying every
// validated record and every row error, or a top-level error when the file
// itself is unusable (unreadable CSV, no header, missing required columns).
//
// Unknown header columns are ignored; recognized columns may appear in any
// order. Blank lines are skipped and do not shift reported line numbers.
func Parse(fileName string, data []byte, specs []schema.FieldSpec) (*Batch, error) {
	start := time.Now()
	filesReceived.Inc()

	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	headerIdx := MakeHeaderIndex(header)
	if err := checkRequiredColumns(headerIdx, specs); err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:       uuid.New(),
		FileName: fileName,
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}

		// Line number of the row in the original file, header included.
		line, _ := r.FieldPos(0)

		if len(row) < len(header) {
			batch.Errors = append(batch.Errors, RowError{
				Line:    line,
				Message: fmt.Sprintf("Insufficient columns (got %d, expected %d)", len(row), len(header)),
			})
			rowsRejected.WithLabelValues("columns").Inc()
			continue
		}

		raw := make(RawRow, len(specs))
		for _, spec := range specs {
			pos, ok := headerIdx[spec.Name]
			if !ok || pos >= len(row) {
				continue
			}
			raw[spec.Name] = CleanCell(row[pos])
		}

		record, rowErr := validateRow(raw, line, specs)
		if rowErr != nil {
			batch.Errors = append(batch.Errors, *rowErr)
			continue
		}
		batch.Records = append(batch.Records, *record)
		rowsParsed.Inc()
	}

	parseDuration.Observe(time.Since(start).Seconds())
	return batch, nil
}

// readHeader returns the first non-blank record, which is treated as the
// header row.
func readHeader(r *csv.Reader) ([]string, error) {
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil, ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv header: %w", err)
		}
		if !isEmptyRow(row) {
			return row, nil
		}
	}
}

// checkRequiredColumns verifies the header declares every required column.
func checkRequiredColumns(idx HeaderIndex, specs []schema.FieldSpec) error {
	var missing []string
	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[spec.Name]; !ok {
			missing = append(missing, spec.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement rune
// so downstream parsing never chokes on exported spreadsheet encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
