package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestToCSV(t *testing.T) {
	tests := []struct {
		name    string
		records []DataRecord
		want    string
	}{
		{
			name:    "empty sequence",
			records: nil,
			want:    "",
		},
		{
			name:    "single record",
			records: []DataRecord{{"Jan", 4200}},
			want:    "category,value\n\"Jan\",4200",
		},
		{
			name:    "fractional values",
			records: []DataRecord{{"Q1 2023", 4.5}, {"Q2 2023", 5.7}},
			want:    "category,value\n\"Q1 2023\",4.5\n\"Q2 2023\",5.7",
		},
		{
			name:    "embedded quote is doubled",
			records: []DataRecord{{`12" pipe`, 3}},
			want:    "category,value\n\"12\"\" pipe\",3",
		},
		{
			name:    "embedded comma stays inside quotes",
			records: []DataRecord{{"Home, Garden", 12}},
			want:    "category,value\n\"Home, Garden\",12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToCSV(tt.records); got != tt.want {
				t.Errorf("ToCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "blank input",
			input: "",
			want:  []Row{},
		},
		{
			name:  "header only",
			input: "category,value",
			want:  []Row{},
		},
		{
			name:  "header only with trailing newline",
			input: "category,value\n",
			want:  []Row{},
		},
		{
			name:  "numeric values become numbers",
			input: "category,value\nA,10\nB,20",
			want: []Row{
				{"category": "A", "value": 10.0},
				{"category": "B", "value": 20.0},
			},
		},
		{
			name:  "per-field typing",
			input: "category,value\n2024,10\nA,abc",
			want: []Row{
				{"category": 2024.0, "value": 10.0},
				{"category": "A", "value": "abc"},
			},
		},
		{
			name:  "short row lacks missing keys",
			input: "category,value\nA",
			want: []Row{
				{"category": "A"},
			},
		},
		{
			name:  "extra fields are dropped",
			input: "category,value\nA,1,extra",
			want: []Row{
				{"category": "A", "value": 1.0},
			},
		},
		{
			name:  "blank lines are skipped",
			input: "category,value\n\nA,1\n , \nB,2\n",
			want: []Row{
				{"category": "A", "value": 1.0},
				{"category": "B", "value": 2.0},
			},
		},
		{
			name:  "any header naming",
			input: "month,sales\nJan,4200",
			want: []Row{
				{"month": "Jan", "sales": 4200.0},
			},
		},
		{
			name:  "quoted fields",
			input: "category,value\n\"Home, Garden\",12\n\"Say \"\"hi\"\"\",3",
			want: []Row{
				{"category": "Home, Garden", "value": 12.0},
				{"category": `Say "hi"`, "value": 3.0},
			},
		},
		{
			name:  "CRLF line endings",
			input: "category,value\r\nA,1\r\n",
			want: []Row{
				{"category": "A", "value": 1.0},
			},
		},
		{
			name:  "BOM before header",
			input: "\ufeffcategory,value\nA,1",
			want: []Row{
				{"category": "A", "value": 1.0},
			},
		},
		{
			name:  "empty field stays text",
			input: "category,value\nA,",
			want: []Row{
				{"category": "A", "value": ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromCSV(tt.input)
			if err != nil {
				t.Fatalf("FromCSV() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromCSV() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFromCSV_ValueIsNumeric(t *testing.T) {
	rows, err := FromCSV("category,value\nA,10\nB,20")
	if err != nil {
		t.Fatalf("FromCSV() error: %v", err)
	}
	for i, row := range rows {
		if _, ok := row[FieldValue].(float64); !ok {
			t.Errorf("row %d value has type %T, want float64", i, row[FieldValue])
		}
	}

	records, err := Records(rows)
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	want := []DataRecord{{"A", 10}, {"B", 20}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Records() = %v, want %v", records, want)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	sequences := map[string][]DataRecord{
		"monthly":    {{"Jan", 4200}, {"Feb", 3800}, {"Mar", 5100}},
		"fractions":  {{"Q1 2023", 4.5}, {"Q2 2023", -5.75}},
		"duplicates": {{"A", 1}, {"A", 1}, {"B", 0}},
		"numeric":    {{"2024", 1}, {"2025", 2}},
		"spaces":     {{"Home & Kitchen", 12}},
		"tiny":       {{"x", 1e-7}},
		"large":      {{"y", 123456789012}},
		"quoted":     {{`A "quoted", comma`, 9}},
	}

	for name, records := range sequences {
		t.Run(name, func(t *testing.T) {
			rows, err := FromCSV(ToCSV(records))
			if err != nil {
				t.Fatalf("FromCSV() error: %v", err)
			}
			got, err := Records(rows)
			if err != nil {
				t.Fatalf("Records() error: %v", err)
			}
			if !reflect.DeepEqual(got, records) {
				t.Errorf("round trip = %v, want %v", got, records)
			}
		})
	}
}

func TestParseCSV_Strict(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("category,value\n2024,\"$1,200\"\nB,(5)"), ParseOptions{Strict: true})
	if err != nil {
		t.Fatalf("ParseCSV() error: %v", err)
	}
	want := []Row{
		{"category": "2024", "value": 1200.0},
		{"category": "B", "value": -5.0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ParseCSV() = %#v, want %#v", rows, want)
	}
}

func TestParseCSV_StrictRejectsNonNumericValue(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("category,value\nA,1\nB,lots"), ParseOptions{Strict: true})
	if err == nil {
		t.Fatal("ParseCSV() succeeded, want format error")
	}

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *FormatError", err)
	}
	if fe.Line != 3 {
		t.Errorf("Line = %d, want 3", fe.Line)
	}
	if got := MapError(err).Code; got != "CSV001" {
		t.Errorf("MapError code = %s, want CSV001", got)
	}
}

func TestParseCSV_MalformedQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "text after closing quote", input: "category,value\n\"A\"x,1\nB,\"2\"", wantLine: 2},
		{name: "bare quote in unquoted field", input: "category,value\nA,1\n5\" screen,2", wantLine: 3},
		{name: "unterminated quote", input: "category,value\n\"A,1\nB,2", wantLine: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCSV(tt.input)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("FromCSV() error = %v, want FormatError", err)
			}
			if fe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", fe.Line, tt.wantLine)
			}
			if got := MapError(err).Code; got != "CSV001" {
				t.Errorf("MapError code = %s, want CSV001", got)
			}
		})
	}
}

func TestParseCSV_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParseCSV(iotest.ErrReader(boom), ParseOptions{})
	if !IsFormatError(err) {
		t.Fatalf("error %v is not a format error", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error %v does not wrap the read error", err)
	}
}

func TestWriteCSV(t *testing.T) {
	var b strings.Builder
	if err := WriteCSV(&b, []DataRecord{{"A", 1}}); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}
	if got, want := b.String(), "category,value\n\"A\",1"; got != want {
		t.Errorf("WriteCSV() wrote %q, want %q", got, want)
	}
}

func TestRowsFromTable(t *testing.T) {
	table := [][]string{
		{" category ", "value"},
		{"Jan", "4200"},
		{"", ""},
		{"Feb"},
	}
	rows, err := RowsFromTable(table, ParseOptions{})
	if err != nil {
		t.Fatalf("RowsFromTable() error: %v", err)
	}
	want := []Row{
		{"category": "Jan", "value": 4200.0},
		{"category": "Feb"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("RowsFromTable() = %#v, want %#v", rows, want)
	}

	_, err = RowsFromTable([][]string{{"category", "value"}, {"A", "x"}}, ParseOptions{Strict: true})
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Line != 2 {
		t.Errorf("strict error = %v, want format error on line 2", err)
	}

	if rows, err := RowsFromTable(nil, ParseOptions{}); err != nil || len(rows) != 0 {
		t.Errorf("RowsFromTable(nil) = (%v, %v)", rows, err)
	}
}
