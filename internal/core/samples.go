package core

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// SampleDataset is a named, canned record sequence used to seed the dashboard.
type SampleDataset struct {
	Key     string       `json:"key" yaml:"-"`
	Label   string       `json:"label" yaml:"label"`
	Records []DataRecord `json:"records" yaml:"records"`
}

var (
	samples   = make(map[string]SampleDataset)
	samplesMu sync.RWMutex
)

func init() {
	for _, s := range builtinSamples() {
		RegisterSample(s)
	}
}

func builtinSamples() []SampleDataset {
	return []SampleDataset{
		{
			Key:   "monthlySales",
			Label: "Monthly Sales Data",
			Records: []DataRecord{
				{"Jan", 4200}, {"Feb", 3800}, {"Mar", 5100},
				{"Apr", 4900}, {"May", 6300}, {"Jun", 5800},
			},
		},
		{
			Key:   "productCategories",
			Label: "Product Categories",
			Records: []DataRecord{
				{"Electronics", 35}, {"Clothing", 28}, {"Books", 17},
				{"Home & Kitchen", 12}, {"Toys", 8},
			},
		},
		{
			Key:   "quarterlyGrowth",
			Label: "Quarterly Growth",
			Records: []DataRecord{
				{"Q1 2023", 4.5}, {"Q2 2023", 5.7}, {"Q3 2023", 3.2},
				{"Q4 2023", 6.8}, {"Q1 2024", 7.2},
			},
		},
		{
			Key:   "marketShare",
			Label: "Market Share",
			Records: []DataRecord{
				{"Company A", 38}, {"Company B", 25}, {"Company C", 19},
				{"Company D", 12}, {"Others", 6},
			},
		},
	}
}

// RegisterSample adds or replaces a sample dataset.
func RegisterSample(s SampleDataset) {
	samplesMu.Lock()
	defer samplesMu.Unlock()

	if s.Label == "" {
		s.Label = s.Key
	}
	s.Records = Clone(s.Records)
	samples[s.Key] = s
}

// Sample returns a copy of the sample dataset registered under key.
func Sample(key string) (SampleDataset, bool) {
	samplesMu.RLock()
	defer samplesMu.RUnlock()

	s, ok := samples[key]
	if !ok {
		return SampleDataset{}, false
	}
	s.Records = Clone(s.Records)
	return s, true
}

// Samples returns all sample datasets sorted by key.
func Samples() []SampleDataset {
	samplesMu.RLock()
	defer samplesMu.RUnlock()

	out := make([]SampleDataset, 0, len(samples))
	for _, s := range samples {
		s.Records = Clone(s.Records)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// samplesFile is the YAML layout accepted by LoadSamplesYAML:
//
//	samples:
//	  weeklyVisits:
//	    label: Weekly Visits
//	    records:
//	      - {category: Mon, value: 120}
type samplesFile struct {
	Samples map[string]SampleDataset `yaml:"samples"`
}

// LoadSamplesYAML registers every dataset in the YAML document read from r,
// replacing built-in samples with the same key. Datasets with invalid records
// are rejected as a whole and nothing is registered.
func LoadSamplesYAML(r io.Reader) (int, error) {
	var file samplesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("decode samples: %w", err)
	}

	keys := make([]string, 0, len(file.Samples))
	for key, s := range file.Samples {
		if len(s.Records) == 0 {
			return 0, fmt.Errorf("sample %q: %w", key, ErrEmptyDataset)
		}
		for i, rec := range s.Records {
			if err := ValidateRecord(rec); err != nil {
				return 0, fmt.Errorf("sample %q record %d: %w", key, i, err)
			}
		}
		keys = append(keys, key)
	}

	sort.Strings(keys)
	for _, key := range keys {
		s := file.Samples[key]
		s.Key = key
		RegisterSample(s)
	}
	return len(keys), nil
}
