package model

import (
	"strings"

	"golang.org/x/exp/slices"
)

// OutputFormat is the format in which a run report is written.
type OutputFormat string

const (
	AppName = "xapictl"

	// DefaultDisplayName is set on devices that are listed without a displayName.
	DefaultDisplayName = "Unknown"

	OutputSummary  OutputFormat = "summary"
	OutputDetailed OutputFormat = "detailed"
	OutputJSON     OutputFormat = "json"
	OutputTable    OutputFormat = "table"

	LogLevelInfo  = 0
	LogLevelDebug = 1
	LogLevelTrace = 2
)

// RunOutputFormats returns the supported run report formats.
func RunOutputFormats() []OutputFormat {
	return []OutputFormat{OutputSummary, OutputDetailed, OutputJSON}
}

// ListOutputFormats returns the supported device list formats.
func ListOutputFormats() []OutputFormat {
	return []OutputFormat{OutputTable, OutputJSON}
}

// ValidOutputFormat returns true when the format is one of the given supported formats.
func ValidOutputFormat(format string, supported []OutputFormat) bool {
	return slices.Contains(supported, OutputFormat(strings.ToLower(format)))
}

// FormatList returns the formats as a comma separated list for flag usage strings.
func FormatList(formats []OutputFormat) string {
	s := make([]string, 0, len(formats))
	for _, f := range formats {
		s = append(s, string(f))
	}

	return strings.Join(s, ", ")
}
