package core

// error_messages.go maps technical errors to messages a dashboard user can
// act on. Each message carries a code that can be quoted to support.
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Invalid CSV: the text could not be read as CSV
//	         Patterns: "invalid csv"
//	CSV002 - Encoding error: the file is not UTF-8 text
//	         Patterns: "encoding error"
//	CSV003 - Empty file: nothing to import
//	         Patterns: "empty file"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid data point: a record has no category or no finite value
//	         Patterns: "invalid data point"
//	VAL002 - Invalid number: a value is not a non-negative number
//	         Patterns: "invalid number", "positive number"
//	VAL003 - Required field: a form field was left empty
//	         Patterns: "is required"
//	VAL004 - Missing column: imported rows lack category or value
//	         Patterns: "missing required column"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large"
//	FILE002 - No file: nothing was uploaded
//	          Patterns: "no file provided"
//	FILE003 - Unsupported type: not CSV or XLSX
//	          Patterns: "unsupported file type"
//	FILE004 - Invalid spreadsheet: the workbook could not be opened
//	          Patterns: "invalid spreadsheet"
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Index out of range: the edited row no longer exists
//	         Patterns: "index out of range"
//	REC002 - No data: the dataset is empty
//	         Patterns: "no data to chart"
//	REC003 - Unknown sample
//	         Patterns: "sample not found"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid chart config
//	         Patterns: "invalid chart config"
//	CFG002 - Invalid transform option
//	         Patterns: "invalid sort direction", "invalid aggregate method"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: too many imports in progress
//	         Patterns: "too many concurrent imports"
//	IMP002 - Request cancelled
//	         Patterns: "context canceled"
//	IMP003 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// ERR000 is the fallback when nothing matches. Check the logs for the
// technical error when a user reports it.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins. Strict-mode value failures read "invalid csv: ... is not a
// number", so "invalid csv" must stay ahead of "invalid number".

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgInvalidNumber = UserMessage{
		Message: "Value must be a positive number",
		Action:  "Enter a number such as 42 or 3.5",
		Code:    "VAL002",
	}
	msgInvalidOption = UserMessage{
		Message: "Unknown transform option",
		Action:  "Use asc, desc or none for sorting and sum, avg, max, min or none for aggregation",
		Code:    "CFG002",
	}
)

var errorPatterns = []errorPattern{
	// CSV
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Invalid data format. The file could not be read as CSV",
			Action:  "Check quoting and make sure the file is comma-separated",
			Code:    "CSV001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "CSV002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a CSV file with a header and data rows",
			Code:    "CSV003",
		},
	},

	// Validation
	{
		pattern: "invalid data point",
		msg: UserMessage{
			Message: "Invalid data point format",
			Action:  "Each data point needs a category and a numeric value",
			Code:    "VAL001",
		},
	},
	{pattern: "invalid number", msg: msgInvalidNumber},
	{pattern: "positive number", msg: msgInvalidNumber},
	{
		pattern: "is required",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Fill in both category and value",
			Code:    "VAL003",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Invalid data format. CSV must have category and value columns.",
			Action:  "Add a header row with category and value and make every value numeric",
			Code:    "VAL004",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused rows or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a CSV or Excel file to import",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Unsupported file type",
			Action:  "Import a .csv or .xlsx file",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The spreadsheet could not be opened",
			Action:  "Re-save the workbook as .xlsx or export the sheet to CSV",
			Code:    "FILE004",
		},
	},

	// Records
	{
		pattern: "index out of range",
		msg: UserMessage{
			Message: "That data point no longer exists",
			Action:  "Reload the data and try again",
			Code:    "REC001",
		},
	},
	{
		pattern: "no data to chart",
		msg: UserMessage{
			Message: "No data to export",
			Action:  "Add data points, import a file or load a sample first",
			Code:    "REC002",
		},
	},
	{
		pattern: "sample not found",
		msg: UserMessage{
			Message: "Sample dataset not found",
			Action:  "Choose one of the listed sample datasets",
			Code:    "REC003",
		},
	},

	// Configuration
	{
		pattern: "invalid chart config",
		msg: UserMessage{
			Message: "Chart settings are invalid",
			Action:  "Check chart type, labels, aspect ratio (0.5 to 3) and color scheme",
			Code:    "CFG001",
		},
	},
	{pattern: "invalid sort direction", msg: msgInvalidOption},
	{pattern: "invalid aggregate method", msg: msgInvalidOption},

	// Imports
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IMP003",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Unmatched errors map to ERR000; nil maps to the zero UserMessage.
//
//	msg := MapError(ErrInvalidSequence)
//	// msg.Code == "VAL004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
// Error() returns the user message; Unwrap() the technical error.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
