// Package core provides the chart data model, the CSV codec and the transform
// pipeline used by the dashboard.
//
// The package holds no state of its own beyond the sample registry and has no
// UI or storage dependencies. Web handlers, the CLI and tests all call into it
// directly.
//
// # Records
//
// A [DataRecord] is one category/value pair, the atomic unit of chart data. A
// sequence of records is an ordered slice; order is insertion order and is what
// charts render.
//
// Imports do not produce records directly. [FromCSV] produces loosely-typed
// [Row] values whose fields are either text or numbers, decided per field. A
// second step, [IsValidSequence] and [Records], decides whether those rows
// form a usable sequence:
//
//	rows, err := core.FromCSV(text)     // format errors only
//	if err != nil { ... }
//	records, err := core.Records(rows)  // validation failure
//	if err != nil { ... }
//
// Keep the two phases separate: the parser never rejects a row for its shape,
// and the validator is the only thing that decides whether an import is
// accepted.
//
// # Transforms
//
// Every transform returns a new slice and leaves its input untouched:
//
//   - [SortByValue]: stable sort by value, ascending or descending
//   - [Aggregate]: group by category and reduce with sum/avg/max/min
//   - [NormalizeToPercentage]: rescale values to percentages of the total
//   - [Remap]: build records from arbitrary objects via a field mapping
//   - [FormatDateCategories]: rewrite date-like categories
//
// [Apply] composes the automatic part of the pipeline (sort, then normalize).
// Aggregation is never applied automatically.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Codes:
//
//   - CSV001-CSV003: unreadable or malformed CSV text
//   - VAL001-VAL004: records or data points that fail validation
//   - FILE001-FILE004: file size, type and presence
//   - REC001-REC003: index-addressed edits, empty datasets, unknown samples
//   - CFG001-CFG002: chart configuration and transform options
//   - IMP001-IMP003: import concurrency limit and cancelled requests
package core
