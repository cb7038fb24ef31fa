package core

// csv.go converts between record sequences and CSV text.
//
// Export always writes the header "category,value", quotes the category and
// leaves the value bare. Embedded double quotes are doubled (RFC 4180), so
// categories containing commas or quotes survive a round trip.
//
// Import treats the first row as the header and maps every later non-blank
// row onto it by position. Each field is typed on its own: text that parses
// as a finite number becomes a float64, anything else stays a string. Two
// rows can therefore disagree on the type of the same column; validation is
// what catches a non-numeric value. Short rows simply lack the missing keys.
//
// Quoting follows RFC 4180 on input too. A quote inside an unquoted field, or
// text after the closing quote of a quoted field, is a FormatError for that
// line; lenient quote handling would fold the rest of the file into one cell.
//
// Strict mode replaces the per-field heuristic for the two known columns:
// category is always text and value must parse as an amount on every row.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseOptions controls CSV import.
type ParseOptions struct {
	// Strict keeps the category column as text and requires every value
	// cell to parse as a number. An unparseable value is a format error.
	Strict bool
}

// FormatError reports CSV text that could not be read. Line is 1-based and
// zero when unknown.
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid csv: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("invalid csv: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// ToCSV renders records as CSV text. An empty sequence yields "".
func ToCSV(records []DataRecord) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(FieldCategory)
	b.WriteByte(',')
	b.WriteString(FieldValue)

	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(quoteField(r.Category))
		b.WriteByte(',')
		b.WriteString(FormatNumber(r.Value))
	}

	return b.String()
}

// WriteCSV writes ToCSV(records) to w.
func WriteCSV(w io.Writer, records []DataRecord) error {
	_, err := io.WriteString(w, ToCSV(records))
	return err
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FromCSV parses CSV text into loosely-typed rows using the per-field heuristic.
// Blank or header-only input yields an empty slice.
func FromCSV(text string) ([]Row, error) {
	return ParseCSV(strings.NewReader(text), ParseOptions{})
}

// ParseCSV parses CSV from r. It only fails when the text cannot be read or,
// in strict mode, when a value cell is not a number; missing columns are left
// for validation to reject.
func ParseCSV(r io.Reader, opts ParseOptions) ([]Row, error) {
	cr := csv.NewReader(NewSanitizingReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, toFormatError(err)
	}

	headers := cleanHeaders(header)

	rows := []Row{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, toFormatError(err)
		}
		if isRowEmpty(record) {
			continue
		}

		line, _ := cr.FieldPos(0)
		row, err := buildRow(headers, record, opts)
		if err != nil {
			return nil, &FormatError{Line: line, Err: err}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// RowsFromTable applies the import rules of ParseCSV to rows that were already
// split into cells, such as the first sheet of a workbook. table[0] is the
// header; an empty table yields an empty slice.
func RowsFromTable(table [][]string, opts ParseOptions) ([]Row, error) {
	rows := []Row{}
	if len(table) == 0 {
		return rows, nil
	}

	headers := cleanHeaders(table[0])
	for i, record := range table[1:] {
		if isRowEmpty(record) {
			continue
		}
		row, err := buildRow(headers, record, opts)
		if err != nil {
			return nil, &FormatError{Line: i + 2, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cleanHeaders(header []string) []string {
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = CleanCell(h)
	}
	return headers
}

// buildRow maps record fields onto headers by position. Fields past the
// header are dropped; headers past the record are left out of the row.
func buildRow(headers, record []string, opts ParseOptions) (Row, error) {
	row := make(Row, len(headers))
	for i, h := range headers {
		if i >= len(record) {
			break
		}
		cell := record[i]

		if opts.Strict {
			switch h {
			case FieldCategory:
				row[h] = CleanCell(cell)
				continue
			case FieldValue:
				v, ok := ParseAmount(CleanCell(cell))
				if !ok {
					return nil, fmt.Errorf("value %q is not a number", cell)
				}
				row[h] = v
				continue
			}
		}

		row[h] = coerceField(cell)
	}
	return row, nil
}

// coerceField returns a float64 for numeric text and the text itself otherwise.
func coerceField(s string) any {
	if v, ok := parseNumeric(s); ok {
		return v
	}
	return s
}

func isRowEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func toFormatError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		line := pe.StartLine
		if line == 0 {
			line = pe.Line
		}
		return &FormatError{Line: line, Err: pe.Err}
	}
	return &FormatError{Err: err}
}
