// Package importer turns uploaded files into loosely-typed rows and, in a
// separate step, into records.
//
// CSV goes through the core codec. XLSX workbooks are read with excelize: the
// first sheet is taken as a table whose first row is the header, and the same
// per-field typing rules apply as for CSV.
package importer

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/ChartDash/internal/core"
)

// Format is an import file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file")
)

// Options control a single import.
type Options struct {
	core.ParseOptions

	// MaxBytes caps the raw input size; zero means no limit.
	MaxBytes int64
}

// Result describes what Decode read.
type Result struct {
	Format Format
	Rows   []core.Row
	Bytes  int64
}

// DetectFormat picks a format from a file name, falling back to the content
// type. An empty name and type mean CSV text.
func DetectFormat(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}

	if contentType == "" {
		return FormatCSV, nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	switch mediaType {
	case "text/csv", "text/plain", "application/csv", "application/octet-stream":
		return FormatCSV, nil
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
}

// Decode reads r as format. It reports format errors only; whether the rows
// form a usable sequence is decided by Records.
func Decode(r io.Reader, format Format, opts Options) (Result, error) {
	res := Result{Format: format}
	if r == nil {
		return res, ErrNoFile
	}

	if opts.MaxBytes > 0 {
		r = &limitedReader{r: r, remaining: opts.MaxBytes}
	}

	var err error
	switch format {
	case FormatCSV:
		res.Rows, res.Bytes, err = decodeCSV(r, opts.ParseOptions)
	case FormatXLSX:
		res.Rows, res.Bytes, err = decodeXLSX(r, opts.ParseOptions)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, format)
	}
	if errors.Is(err, ErrFileTooLarge) {
		return res, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, opts.MaxBytes)
	}
	return res, err
}

func decodeCSV(r io.Reader, opts core.ParseOptions) ([]core.Row, int64, error) {
	clean, counter := core.WrapForImport(r)
	rows, err := core.ParseCSV(clean, opts)
	return rows, counter.BytesRead, err
}

func decodeXLSX(r io.Reader, opts core.ParseOptions) ([]core.Row, int64, error) {
	counter := core.NewCountingReader(r)

	f, err := excelize.OpenReader(counter)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, counter.BytesRead, err
		}
		if counter.BytesRead == 0 {
			return nil, 0, ErrEmptyFile
		}
		return nil, counter.BytesRead, fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, counter.BytesRead, errors.New("invalid spreadsheet: workbook has no sheets")
	}
	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, counter.BytesRead, fmt.Errorf("invalid spreadsheet: read %s: %w", sheet, err)
	}

	rows, err := core.RowsFromTable(table, opts)
	return rows, counter.BytesRead, err
}

// Records validates decoded rows. It wraps core.ErrInvalidSequence on failure.
func Records(res Result) ([]core.DataRecord, error) {
	return core.Records(res.Rows)
}

// limitedReader fails with ErrFileTooLarge instead of silently truncating.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
