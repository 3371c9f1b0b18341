package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/tschart/schema"
)

// Point flag labels.
const (
	FakeValue   = "fake"
	OldestValue = "oldest"
	NewestValue = "newest"
)

// Color variables for console output.
var (
	FakeColor   = color.New(color.FgYellow)            // FakeColor marks synthesized points.
	OldestColor = color.New(color.FgCyan)              // OldestColor marks the start of history.
	NewestColor = color.New(color.FgGreen, color.Bold) // NewestColor marks the live edge.
)

// GetPlainFlags returns the plain text flags of a point, e.g. "fake,newest".
// This is the core logic used for CSV and table printing.
func GetPlainFlags(p schema.Point) string {
	return strings.Join(pointFlags(p), ",")
}

// GetColorFlags returns the colored flags of a point for console output (table).
func GetColorFlags(p schema.Point) string {
	flags := pointFlags(p)
	for i, flag := range flags {
		switch flag {
		case FakeValue:
			flags[i] = FakeColor.Sprint(flag)
		case OldestValue:
			flags[i] = OldestColor.Sprint(flag)
		default:
			flags[i] = NewestColor.Sprint(flag)
		}
	}
	return strings.Join(flags, ",")
}

func pointFlags(p schema.Point) []string {
	var flags []string
	if p.Fake {
		flags = append(flags, FakeValue)
	}
	if p.Oldest {
		flags = append(flags, OldestValue)
	}
	if p.Newest {
		flags = append(flags, NewestValue)
	}
	return flags
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for series storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tschart_store.db"
	}
	return filepath.Join(homeDir, ".tschart_store.db")
}

// GetDashboardDBFilePath returns the path to the SQLite DB file for dashboard storage.
func GetDashboardDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tschart_dashboards.db"
	}
	return filepath.Join(homeDir, ".tschart_dashboards.db")
}

// TruncateText truncates text to a maximum width with an ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
