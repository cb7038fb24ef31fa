package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidChartConfig wraps chart configuration validation failures.
var ErrInvalidChartConfig = errors.New("invalid chart config")

// ChartType is the kind of chart the browser draws.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// Aspect ratio bounds accepted by the chart form.
const (
	MinAspectRatio = 0.5
	MaxAspectRatio = 3.0
)

// ChartConfig is the presentation configuration passed to the chart renderer.
type ChartConfig struct {
	Type        ChartType `json:"type"`
	Title       string    `json:"title"`
	XAxis       string    `json:"xAxis"`
	YAxis       string    `json:"yAxis"`
	ShowLegend  bool      `json:"showLegend"`
	AspectRatio float64   `json:"aspectRatio"`
	Colors      string    `json:"colors"`
}

// DefaultChartConfig returns the configuration the chart form resets to.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Type:        ChartBar,
		Title:       "My Chart",
		XAxis:       "Category",
		YAxis:       "Value",
		ShowLegend:  true,
		AspectRatio: 1,
		Colors:      "default",
	}
}

// Validate checks every field and returns all problems at once.
// The returned error wraps ErrInvalidChartConfig.
func (c ChartConfig) Validate() error {
	var errs ValidationErrors

	switch c.Type {
	case ChartBar, ChartLine, ChartPie:
	default:
		errs = append(errs, ValidationError{Field: "type", Value: string(c.Type), Message: "please select a chart type (bar, line or pie)"})
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, ValidationError{Field: "title", Message: "chart title is required"})
	}
	if strings.TrimSpace(c.XAxis) == "" {
		errs = append(errs, ValidationError{Field: "xAxis", Message: "x-axis label is required"})
	}
	if strings.TrimSpace(c.YAxis) == "" {
		errs = append(errs, ValidationError{Field: "yAxis", Message: "y-axis label is required"})
	}
	if math.IsNaN(c.AspectRatio) || c.AspectRatio < MinAspectRatio || c.AspectRatio > MaxAspectRatio {
		errs = append(errs, ValidationError{
			Field:   "aspectRatio",
			Value:   FormatNumber(c.AspectRatio),
			Message: fmt.Sprintf("aspect ratio must be between %v and %v", MinAspectRatio, MaxAspectRatio),
		})
	}
	if _, ok := colorSchemes[c.Colors]; !ok {
		errs = append(errs, ValidationError{Field: "colors", Value: c.Colors, Message: "unknown color scheme"})
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChartConfig, errs)
	}
	return nil
}

// Theme colors behind the default and monochrome palettes.
const (
	themePrimaryMain  = "#1976d2"
	themePrimaryDark  = "#1565c0"
	themePrimaryLight = "#42a5f5"
	themeSecondary    = "#dc004e"
)

var colorSchemes = map[string][]string{
	"default": {
		themePrimaryMain, themeSecondary, "#2e7d32", "#ed6c02", "#9c27b0", "#0288d1",
	},
	"pastel": {
		"#90caf9", "#a5d6a7", "#ffcc80", "#ef9a9a", "#ce93d8", "#b39ddb",
	},
	"bold": {
		"#f44336", "#2196f3", "#4caf50", "#ff9800", "#9c27b0", "#00bcd4",
	},
	"monochrome": {
		themePrimaryDark, themePrimaryMain, themePrimaryLight, "#90caf9", "#bbdefb", "#e3f2fd",
	},
}

// ColorSchemeKeys lists the known palettes in display order.
var ColorSchemeKeys = []string{"default", "pastel", "bold", "monochrome"}

// ColorScheme returns a copy of the palette for key; unknown keys get the default palette.
func ColorScheme(key string) []string {
	palette, ok := colorSchemes[key]
	if !ok {
		palette = colorSchemes["default"]
	}
	return append([]string(nil), palette...)
}

// Chart is the chart-ready payload handed to the browser renderer.
type Chart struct {
	Config ChartConfig `json:"config"`
	Labels []string    `json:"labels"`
	Values []float64   `json:"values"`
	// Colors has one entry per record, cycling through the palette.
	Colors []string `json:"colors"`
}

// BuildChart prepares records for rendering under cfg.
// Returns ErrEmptyDataset for an empty sequence.
func BuildChart(records []DataRecord, cfg ChartConfig) (Chart, error) {
	if len(records) == 0 {
		return Chart{}, ErrEmptyDataset
	}

	palette := ColorScheme(cfg.Colors)
	chart := Chart{
		Config: cfg,
		Labels: make([]string, len(records)),
		Values: make([]float64, len(records)),
		Colors: make([]string, len(records)),
	}
	for i, r := range records {
		chart.Labels[i] = r.Category
		chart.Values[i] = r.Value
		chart.Colors[i] = palette[i%len(palette)]
	}
	return chart, nil
}
