package store

import (
	"strconv"
	"strings"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intsToCSV serializes reminder offsets preserving their configured order,
// which is a caller-visible contract of match evaluation.
func intsToCSV(vals []int) string {
	if len(vals) == 0 {
		return ""
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func csvToInts(s string) []int {
	if s == "" {
		return nil
	}
	var vals []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v <= 0 {
			continue
		}
		vals = append(vals, v)
	}
	return vals
}

func stringsToCSV(vals []string) string {
	return strings.Join(vals, ",")
}

func csvToStrings(s string) []string {
	if s == "" {
		return nil
	}
	var vals []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			vals = append(vals, trimmed)
		}
	}
	return vals
}
