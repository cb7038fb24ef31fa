package importer

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/ChartDash/internal/core"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        Format
		wantErr     bool
	}{
		{name: "csv extension", filename: "chart_data.csv", want: FormatCSV},
		{name: "upper-case extension", filename: "DATA.CSV", want: FormatCSV},
		{name: "xlsx extension", filename: "sales.xlsx", want: FormatXLSX},
		{name: "raw body", want: FormatCSV},
		{name: "csv content type", contentType: "text/csv; charset=utf-8", want: FormatCSV},
		{name: "xlsx content type", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", want: FormatXLSX},
		{name: "pdf", filename: "report.pdf", wantErr: true},
		{name: "json body", contentType: "application/json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.contentType)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedType) {
					t.Fatalf("err = %v, want ErrUnsupportedType", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecode_CSV(t *testing.T) {
	input := "\xEF\xBB\xBFcategory,value\nJan,4200\nFeb,3800\n"
	res, err := Decode(strings.NewReader(input), FormatCSV, Options{})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if res.Bytes != int64(len(input)) {
		t.Errorf("Bytes = %d, want %d", res.Bytes, len(input))
	}

	records, err := Records(res)
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	want := []core.DataRecord{{Category: "Jan", Value: 4200}, {Category: "Feb", Value: 3800}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
}

func TestDecode_ParseThenValidate(t *testing.T) {
	res, err := Decode(strings.NewReader("name,amount\nA,1"), FormatCSV, Options{})
	if err != nil {
		t.Fatalf("Decode() should not reject wrong columns: %v", err)
	}
	if _, err := Records(res); !errors.Is(err, core.ErrInvalidSequence) {
		t.Errorf("Records() error = %v, want ErrInvalidSequence", err)
	}
}

func TestDecode_Strict(t *testing.T) {
	opts := Options{ParseOptions: core.ParseOptions{Strict: true}}
	_, err := Decode(strings.NewReader("category,value\nA,many"), FormatCSV, opts)
	if !core.IsFormatError(err) {
		t.Errorf("Decode() error = %v, want format error", err)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	input := "category,value\n" + strings.Repeat("A,1\n", 100)

	_, err := Decode(strings.NewReader(input), FormatCSV, Options{MaxBytes: 64})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
	if got := core.MapError(err).Code; got != "FILE001" {
		t.Errorf("MapError code = %s, want FILE001", got)
	}

	if _, err := Decode(strings.NewReader(input), FormatCSV, Options{MaxBytes: int64(len(input))}); err != nil {
		t.Errorf("input of exactly MaxBytes rejected: %v", err)
	}
}

func TestDecode_NilReader(t *testing.T) {
	if _, err := Decode(nil, FormatCSV, Options{}); !errors.Is(err, ErrNoFile) {
		t.Errorf("err = %v, want ErrNoFile", err)
	}
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestDecode_XLSX(t *testing.T) {
	buf := workbook(t, [][]any{
		{"category", "value"},
		{"Electronics", 35},
		{},
		{"Books", 17.5},
	})

	res, err := Decode(buf, FormatXLSX, Options{})
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	records, err := Records(res)
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	want := []core.DataRecord{{Category: "Electronics", Value: 35}, {Category: "Books", Value: 17.5}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %v, want %v", records, want)
	}
	if res.Bytes == 0 {
		t.Error("Bytes not counted")
	}
}

func TestDecode_XLSXInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("category,value\nA,1"), FormatXLSX, Options{})
	if got := core.MapError(err).Code; got != "FILE004" {
		t.Errorf("error %v maps to %s, want FILE004", err, got)
	}

	_, err = Decode(strings.NewReader(""), FormatXLSX, Options{})
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty workbook error = %v, want ErrEmptyFile", err)
	}
}
