package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestChartConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*ChartConfig)
		wantFields []string
	}{
		{name: "defaults are valid", mutate: func(*ChartConfig) {}},
		{name: "pie with pastel", mutate: func(c *ChartConfig) { c.Type = ChartPie; c.Colors = "pastel" }},
		{name: "aspect ratio bounds inclusive", mutate: func(c *ChartConfig) { c.AspectRatio = MaxAspectRatio }},
		{name: "unknown type", mutate: func(c *ChartConfig) { c.Type = "radar" }, wantFields: []string{"type"}},
		{name: "blank title", mutate: func(c *ChartConfig) { c.Title = "  " }, wantFields: []string{"title"}},
		{name: "missing axes", mutate: func(c *ChartConfig) { c.XAxis = ""; c.YAxis = "" }, wantFields: []string{"xAxis", "yAxis"}},
		{name: "aspect ratio too small", mutate: func(c *ChartConfig) { c.AspectRatio = 0.1 }, wantFields: []string{"aspectRatio"}},
		{name: "aspect ratio too large", mutate: func(c *ChartConfig) { c.AspectRatio = 4 }, wantFields: []string{"aspectRatio"}},
		{name: "unknown palette", mutate: func(c *ChartConfig) { c.Colors = "neon" }, wantFields: []string{"colors"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultChartConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidChartConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidChartConfig", err)
			}
			var errs ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("error %v does not carry ValidationErrors", err)
			}
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			if !reflect.DeepEqual(fields, tt.wantFields) {
				t.Errorf("fields = %v, want %v", fields, tt.wantFields)
			}
			if got := MapError(err).Code; got != "CFG001" {
				t.Errorf("MapError code = %s, want CFG001", got)
			}
		})
	}
}

func TestColorScheme(t *testing.T) {
	for _, key := range ColorSchemeKeys {
		if len(ColorScheme(key)) == 0 {
			t.Errorf("palette %q is empty", key)
		}
	}

	if got, want := ColorScheme("unknown"), ColorScheme("default"); !reflect.DeepEqual(got, want) {
		t.Errorf("unknown palette = %v, want default %v", got, want)
	}

	p := ColorScheme("bold")
	p[0] = "#000000"
	if ColorScheme("bold")[0] == "#000000" {
		t.Error("ColorScheme returned the shared palette")
	}
}

func TestBuildChart(t *testing.T) {
	records := []DataRecord{{"A", 1}, {"B", 2}, {"C", 3}, {"D", 4}, {"E", 5}, {"F", 6}, {"G", 7}}
	cfg := DefaultChartConfig()

	chart, err := BuildChart(records, cfg)
	if err != nil {
		t.Fatalf("BuildChart() error: %v", err)
	}
	if !reflect.DeepEqual(chart.Labels, []string{"A", "B", "C", "D", "E", "F", "G"}) {
		t.Errorf("Labels = %v", chart.Labels)
	}
	if !reflect.DeepEqual(chart.Values, []float64{1, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("Values = %v", chart.Values)
	}

	palette := ColorScheme(cfg.Colors)
	if chart.Colors[len(palette)] != palette[0] {
		t.Errorf("colors do not cycle: %v", chart.Colors)
	}
	if chart.Config != cfg {
		t.Errorf("Config = %+v, want %+v", chart.Config, cfg)
	}
}

func TestBuildChart_Empty(t *testing.T) {
	_, err := BuildChart(nil, DefaultChartConfig())
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("BuildChart(nil) error = %v, want ErrEmptyDataset", err)
	}
}
