package data

import (
	"fmt"
	"strings"
)

const (
	// EmptyContentWarning is returned by read in place of content for empty files.
	EmptyContentWarning = "System reminder: File exists but has empty contents"

	MaxLineLength    = 10000
	LineNumberWidth  = 6
	DefaultReadLimit = 2000
)

// SplitLines splits content on newlines, keeping trailing empty lines.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

// IsEmptyContent reports whether content holds nothing but whitespace.
func IsEmptyContent(content string) bool {
	return strings.TrimSpace(content) == ""
}

// FormatLines renders lines with right aligned 1-based line numbers starting
// at startLine. Lines longer than MaxLineLength are split into continuation
// fragments labelled "line.chunk".
func FormatLines(lines []string, startLine int) string {
	var sb strings.Builder

	for i, line := range lines {
		num := startLine + i
		if len(line) <= MaxLineLength {
			fmt.Fprintf(&sb, "%*d\t%s\n", LineNumberWidth, num, line)
			continue
		}

		for chunk := 0; chunk*MaxLineLength < len(line); chunk++ {
			start := chunk * MaxLineLength
			end := min(start+MaxLineLength, len(line))
			if chunk == 0 {
				fmt.Fprintf(&sb, "%*d\t%s\n", LineNumberWidth, num, line[start:end])
			} else {
				label := fmt.Sprintf("%d.%d", num, chunk)
				fmt.Fprintf(&sb, "%*s\t%s\n", LineNumberWidth, label, line[start:end])
			}
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// FormatRead applies the read pagination to content stored at path.
// A limit of zero or less falls back to DefaultReadLimit.
func FormatRead(path, content string, offset, limit int) (string, error) {
	if IsEmptyContent(content) {
		return EmptyContentWarning, nil
	}

	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultReadLimit
	}

	lines := SplitLines(content)
	if offset >= len(lines) {
		return "", OffsetOutOfRange(path, offset, len(lines))
	}

	end := min(offset+limit, len(lines))
	return FormatLines(lines[offset:end], offset+1), nil
}

// ReplaceOccurrences counts non-overlapping occurrences of old in content and
// replaces them with replacement. It fails when old is missing, or when it appears
// more than once and replaceAll is not set.
func ReplaceOccurrences(path, content, old, replacement string, replaceAll bool) (string, int, error) {
	if old == "" {
		return "", 0, Invalid(path, "old string must not be empty")
	}

	occurrences := strings.Count(content, old)
	if occurrences == 0 {
		return "", 0, StringNotFound(path, old)
	}

	if occurrences > 1 && !replaceAll {
		return "", 0, AmbiguousEdit(path, old, occurrences)
	}

	return strings.ReplaceAll(content, old, replacement), occurrences, nil
}
