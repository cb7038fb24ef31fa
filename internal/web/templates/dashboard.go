// Package templates holds the HTML components served by the web package.
// Components are written in .templ files; regenerate the _templ.go files
// with `templ generate` after editing them.
package templates

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/ChartDash/internal/core"
)

// DashboardData is everything the dashboard page shows on first load.
type DashboardData struct {
	Records []core.DataRecord
	Derived []core.DataRecord
	Options core.TransformOptions
	Chart   core.ChartConfig
	Samples []core.SampleDataset
}

// choice is one <option> of a select.
type choice struct {
	Value string
	Label string
}

var sortChoices = []choice{
	{string(core.SortNone), "None"},
	{string(core.SortAsc), "Ascending"},
	{string(core.SortDesc), "Descending"},
}

var aggregateChoices = []choice{
	{string(core.AggregateNone), "None"},
	{string(core.AggregateSum), "Sum"},
	{string(core.AggregateAvg), "Average"},
	{string(core.AggregateMax), "Maximum"},
	{string(core.AggregateMin), "Minimum"},
}

var chartTypeChoices = []choice{
	{string(core.ChartBar), "Bar"},
	{string(core.ChartLine), "Line"},
	{string(core.ChartPie), "Pie"},
}

func recordURL(index int) string {
	return "/api/records/" + strconv.Itoa(index)
}

func sampleURL(key string) string {
	return "/api/samples/" + url.PathEscape(key)
}
