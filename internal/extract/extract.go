// Package extract turns free-form model output into typed records.
//
// Reasoning services wrap JSON in prose and markdown fences, truncate
// payloads, or return plain text. This package is the boundary that keeps
// all of that out of the pipeline: Parse never fails, it degrades to the
// zero-valued record with a low confidence marker.
package extract

import (
	"encoding/json"
	"strings"
)

// Confidence marks how a record was obtained.
type Confidence string

const (
	// ConfidenceHigh means the payload decoded cleanly.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow means the caller received schema defaults because the
	// raw text had no decodable payload.
	ConfidenceLow Confidence = "low"
)

// Parse extracts a JSON record from raw model output into target, which
// must be a pointer to a struct. On failure target keeps its current
// (zero) values and ConfidenceLow is returned. Parse never returns an
// error by design: downstream stages always receive a schema-conformant
// record.
func Parse(raw string, target any) Confidence {
	candidate := JSONPayload(raw)
	if candidate == "" {
		return ConfidenceLow
	}
	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		return ConfidenceLow
	}
	return ConfidenceHigh
}

// JSONPayload isolates the most plausible JSON payload inside raw text.
// Preference order: first fenced code block, then the outermost brace or
// bracket span, then the trimmed text itself if it already looks like
// JSON. Returns "" when nothing resembling JSON is present.
func JSONPayload(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if fenced, ok := fencedBlock(s); ok {
		s = fenced
	}

	return braceSpan(s)
}

// fencedBlock returns the contents of the first ``` fence, tolerating a
// language tag on the opening line.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	s = s[start+3:]
	// Drop the language tag line (e.g. "json").
	if nl := strings.Index(s, "\n"); nl != -1 {
		first := strings.TrimSpace(s[:nl])
		if first == "" || isLanguageTag(first) {
			s = s[nl+1:]
		}
	}
	if end := strings.Index(s, "```"); end != -1 {
		s = s[:end]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// braceSpan slices from the first { or [ to the matching last } or ].
func braceSpan(s string) string {
	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')

	start, closer := -1, byte(0)
	switch {
	case arrStart >= 0 && (objStart == -1 || arrStart < objStart):
		start, closer = arrStart, ']'
	case objStart >= 0:
		start, closer = objStart, '}'
	default:
		return ""
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
