package core

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltinSamples(t *testing.T) {
	want := map[string]int{
		"marketShare":       5,
		"monthlySales":      6,
		"productCategories": 5,
		"quarterlyGrowth":   5,
	}

	for key, n := range want {
		s, ok := Sample(key)
		if !ok {
			t.Errorf("sample %q not registered", key)
			continue
		}
		if len(s.Records) != n {
			t.Errorf("sample %q has %d records, want %d", key, len(s.Records), n)
		}
		for _, r := range s.Records {
			if err := ValidateRecord(r); err != nil {
				t.Errorf("sample %q: %v", key, err)
			}
		}
	}

	s, _ := Sample("monthlySales")
	if s.Records[0] != (DataRecord{"Jan", 4200}) {
		t.Errorf("monthlySales[0] = %v, want {Jan 4200}", s.Records[0])
	}
}

func TestSample_ReturnsCopy(t *testing.T) {
	s, _ := Sample("marketShare")
	s.Records[0].Value = -1

	again, _ := Sample("marketShare")
	if again.Records[0].Value == -1 {
		t.Error("Sample returned the registry's backing slice")
	}
}

func TestSamples_SortedByKey(t *testing.T) {
	all := Samples()
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("Samples() not sorted: %q before %q", all[i-1].Key, all[i].Key)
		}
	}
}

func TestLoadSamplesYAML(t *testing.T) {
	doc := `
samples:
  weeklyVisits:
    label: Weekly Visits
    records:
      - {category: Mon, value: 120}
      - {category: Tue, value: 98.5}
`
	n, err := LoadSamplesYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadSamplesYAML() error: %v", err)
	}
	if n != 1 {
		t.Errorf("loaded %d samples, want 1", n)
	}

	s, ok := Sample("weeklyVisits")
	if !ok {
		t.Fatal("weeklyVisits not registered")
	}
	if s.Label != "Weekly Visits" || len(s.Records) != 2 || s.Records[1].Value != 98.5 {
		t.Errorf("weeklyVisits = %+v", s)
	}
}

func TestLoadSamplesYAML_Empty(t *testing.T) {
	n, err := LoadSamplesYAML(strings.NewReader(""))
	if err != nil || n != 0 {
		t.Errorf("LoadSamplesYAML(\"\") = (%d, %v), want (0, nil)", n, err)
	}
}

func TestLoadSamplesYAML_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "no records",
			doc:  "samples:\n  bad:\n    label: Bad\n",
			want: ErrEmptyDataset,
		},
		{
			name: "blank category",
			doc:  "samples:\n  bad:\n    records:\n      - {category: '', value: 1}\n",
			want: ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSamplesYAML(strings.NewReader(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if _, ok := Sample("bad"); ok {
				t.Error("invalid sample was registered")
			}
		})
	}

	if _, err := LoadSamplesYAML(strings.NewReader("samples: [")); err == nil {
		t.Error("malformed YAML accepted")
	}
}
