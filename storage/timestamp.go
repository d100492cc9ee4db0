package storage

import (
	"strings"
	"time"
)

const requestPrefix = "req_"

const requestLayout = "20060102_150405"

// legacyLayouts are tried in order against the whole directory name.
var legacyLayouts = []string{
	"20060102T150405Z",
	"20060102_150405",
	"2006-01-02_15-04-05",
}

// ParseTimestamp extracts the capture instant encoded in a capture directory
// name. It accepts req_{request_id}_{YYYYMMDD}_{HHMMSS}, where the request id
// may itself contain hyphens or underscores, and the legacy bare forms
// YYYYMMDDTHHMMSSZ, YYYYMMDD_HHMMSS and YYYY-MM-DD_HH-MM-SS.
// The result is always UTC.
func ParseTimestamp(name string) (time.Time, bool) {
	if rest, ok := strings.CutPrefix(name, requestPrefix); ok {
		if ts, _, ok := parseRequestName(rest); ok {
			return ts, true
		}
	}

	for _, layout := range legacyLayouts {
		if ts, err := time.ParseInLocation(layout, name, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ParseRequestID returns the request id of a req_ form name.
func ParseRequestID(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, requestPrefix)
	if !ok {
		return "", false
	}
	_, id, ok := parseRequestName(rest)
	return id, ok
}

// parseRequestName parses "{id}_{YYYYMMDD}_{HHMMSS}" with the req_ prefix
// already removed. At least three tokens are required.
func parseRequestName(rest string) (time.Time, string, bool) {
	parts := strings.Split(rest, "_")
	if len(parts) < 3 {
		return time.Time{}, "", false
	}

	n := len(parts)
	ts, err := time.ParseInLocation(requestLayout, parts[n-2]+"_"+parts[n-1], time.UTC)
	if err != nil {
		return time.Time{}, "", false
	}
	return ts, strings.Join(parts[:n-2], "_"), true
}
