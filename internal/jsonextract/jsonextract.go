// Package jsonextract pulls a JSON document out of raw model output.
// Models frequently wrap JSON in markdown fences or surround it with
// prose; every LLM-derived JSON result in this codebase goes through
// this package before unmarshaling.
package jsonextract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MalformedOutputError indicates that no parseable JSON document could
// be recovered from the model output. The failure is scoped to the call
// that produced the output; callers decide whether to fall back.
type MalformedOutputError struct {
	Reason string
	Raw    string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// Extract returns the JSON document embedded in raw. A fenced
// ```json block wins; otherwise the span from the first opening brace
// or bracket to the matching last closer is used. The returned message
// is validated, so a nil error guarantees json.Unmarshal will accept it.
func Extract(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &MalformedOutputError{Reason: "empty output", Raw: raw}
	}

	candidate := trimmed
	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if !json.Valid([]byte(candidate)) {
		span, ok := braceSpan(candidate)
		if !ok {
			return nil, &MalformedOutputError{Reason: "no JSON document found", Raw: raw}
		}
		candidate = span
	}

	if !json.Valid([]byte(candidate)) {
		return nil, &MalformedOutputError{Reason: "invalid JSON document", Raw: raw}
	}

	return json.RawMessage(candidate), nil
}

// Unmarshal extracts the JSON document in raw and decodes it into v.
func Unmarshal(raw string, v any) error {
	doc, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return &MalformedOutputError{Reason: err.Error(), Raw: raw}
	}
	return nil
}

// braceSpan returns the substring from the first { or [ to the last
// matching } or ] in s.
func braceSpan(s string) (string, bool) {
	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')

	start, closer := objStart, byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start, closer = arrStart, ']'
	}
	if start == -1 {
		return "", false
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
