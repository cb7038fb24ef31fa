package core

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// DefaultDateCategoryLayout is the layout FormatDateCategories uses when none is given.
const DefaultDateCategoryLayout = "Jan 2006"

// Mapping names the source fields Remap reads category and value from.
type Mapping struct {
	CategoryField string `json:"categoryField"`
	ValueField    string `json:"valueField"`
}

// SortByValue returns a copy of records stably sorted by value.
// SortNone returns an unsorted copy.
func SortByValue(records []DataRecord, dir SortDirection) []DataRecord {
	out := Clone(records)
	switch dir {
	case SortAsc:
		slices.SortStableFunc(out, func(a, b DataRecord) int {
			return compareFloat(a.Value, b.Value)
		})
	case SortDesc:
		slices.SortStableFunc(out, func(a, b DataRecord) int {
			return compareFloat(b.Value, a.Value)
		})
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Aggregate groups records by category and reduces each group's values.
// Records with an empty category fall into UnknownCategory. Groups appear in
// the order their category was first seen. AggregateNone reduces by sum.
func Aggregate(records []DataRecord, method AggregateMethod) []DataRecord {
	if len(records) == 0 {
		return []DataRecord{}
	}

	var order []string
	groups := make(map[string][]float64)
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = UnknownCategory
		}
		if _, seen := groups[category]; !seen {
			order = append(order, category)
		}
		groups[category] = append(groups[category], r.Value)
	}

	out := make([]DataRecord, len(order))
	for i, category := range order {
		out[i] = DataRecord{
			Category: category,
			Value:    reduce(groups[category], method),
		}
	}
	return out
}

func reduce(values []float64, method AggregateMethod) float64 {
	switch method {
	case AggregateAvg:
		return sum(values) / float64(len(values))
	case AggregateMax:
		return slices.Max(values)
	case AggregateMin:
		return slices.Min(values)
	default:
		return sum(values)
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// NormalizeToPercentage rescales each value to its share of the total, in percent.
// When the total is not positive every value becomes zero.
func NormalizeToPercentage(records []DataRecord) []DataRecord {
	out := Clone(records)
	if len(out) == 0 {
		return out
	}

	var total float64
	for _, r := range out {
		total += r.Value
	}

	for i := range out {
		if total > 0 {
			out[i].Value = out[i].Value / total * 100
		} else {
			out[i].Value = 0
		}
	}
	return out
}

// Apply computes the derived sequence for opts: sort first, then normalize.
// opts.Aggregate is ignored; aggregation is an explicit, separate step.
func Apply(records []DataRecord, opts TransformOptions) []DataRecord {
	out := Clone(records)
	if opts.Sort != SortNone {
		out = SortByValue(out, opts.Sort)
	}
	if opts.Normalize {
		out = NormalizeToPercentage(out)
	}
	return out
}

// Remap builds records from arbitrary objects. A missing or falsy category
// (0, NaN, false) becomes "" and a missing or non-numeric value becomes 0.
func Remap(items []map[string]any, m Mapping) []DataRecord {
	out := make([]DataRecord, 0, len(items))
	for _, item := range items {
		out = append(out, DataRecord{
			Category: remapCategory(item[m.CategoryField]),
			Value:    remapValue(item[m.ValueField]),
		})
	}
	return out
}

func remapCategory(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if c == 0 || math.IsNaN(c) {
			return ""
		}
		return FormatNumber(c)
	case bool:
		if !c {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(c)
	}
}

func remapValue(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FormatDateCategories rewrites categories that parse as dates using layout
// (a Go time layout, DefaultDateCategoryLayout when empty). Other records are
// copied unchanged.
func FormatDateCategories(records []DataRecord, layout string) []DataRecord {
	if layout == "" {
		layout = DefaultDateCategoryLayout
	}
	out := Clone(records)
	for i, r := range out {
		if t, ok := ParseDate(r.Category); ok {
			out[i].Category = t.Format(layout)
		}
	}
	return out
}
