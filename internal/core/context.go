package core

import "context"

type contextKey string

const (
	ctxKeyImportID contextKey = "import_id"
	ctxKeySource   contextKey = "change_source"
)

// Change sources recorded with dataset mutations.
const (
	SourceAPI    = "api"
	SourceForm   = "form"
	SourceImport = "import"
	SourceSample = "sample"
	SourceCLI    = "cli"
)

// ContextWithImportID tags ctx with the id of the import being processed.
func ContextWithImportID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyImportID, id)
}

// ImportIDFromContext returns the import id, or "" outside an import.
func ImportIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyImportID).(string); ok {
		return v
	}
	return ""
}

// ContextWithSource records what kind of caller is changing the dataset.
func ContextWithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeySource, source)
}

// SourceFromContext returns the change source, defaulting to SourceAPI.
func SourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySource).(string); ok && v != "" {
		return v
	}
	return SourceAPI
}
