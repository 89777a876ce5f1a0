package financeapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// APIError is returned when the API rejects a new expense.
// Message is empty when the body carried nothing usable.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("financeapi: status %d", e.StatusCode)
	}
	return fmt.Sprintf("financeapi: status %d: %s", e.StatusCode, e.Message)
}

// ExtractMessage pulls a user facing message out of an error body.
//
// Lookup order:
//   - "errors" as a non-empty array: its items joined by ", "
//   - "errors" as an object (or empty array): every value flattened in key
//     order, arrays concatenated and empty scalar values skipped
//
// Array items are always kept; a null item reads as "".
//   - "message" when it is a non-empty value
//
// Anything else, including a body that is not a JSON object, yields "".
func ExtractMessage(body []byte) string {
	var envelope struct {
		Errors  json.RawMessage `json:"errors"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	errs := bytes.TrimSpace(envelope.Errors)
	if len(errs) > 0 && (errs[0] == '[' || errs[0] == '{') {
		var items []json.RawMessage
		if errs[0] == '[' && json.Unmarshal(errs, &items) == nil && len(items) > 0 {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, item(it))
			}
			return strings.Join(parts, ", ")
		}
		return strings.Join(flatten(errs), ", ")
	}

	if truthy(envelope.Message) {
		return stringify(envelope.Message)
	}
	return ""
}

// flatten walks the values of an object (or the items of an array) one level
// deep, keeping the order they appear in the body.
func flatten(raw json.RawMessage) []string {
	var out []string
	appendValue := func(v json.RawMessage) {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '[' {
			var items []json.RawMessage
			if json.Unmarshal(v, &items) == nil {
				for _, it := range items {
					out = append(out, item(it))
				}
			}
			return
		}
		if truthy(v) {
			out = append(out, stringify(v))
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	delim, _ := tok.(json.Delim)
	for dec.More() {
		if delim == '{' {
			if _, err := dec.Token(); err != nil {
				return out
			}
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return out
		}
		appendValue(v)
	}
	return out
}

// item renders one array element; null becomes "".
func item(v json.RawMessage) string {
	if isNull(v) {
		return ""
	}
	return stringify(v)
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || string(v) == "null"
}

// truthy reports whether v would be kept by a plain truthiness check:
// null, false, 0 and "" are dropped.
func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	switch {
	case isNull(v), string(v) == "false", string(v) == `""`:
		return false
	case v[0] == '-' || (v[0] >= '0' && v[0] <= '9'):
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && f != 0
	}
	return true
}

// stringify renders a JSON value the way it would read in a sentence.
func stringify(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) > 0 && v[0] == '"' {
		var s string
		if json.Unmarshal(v, &s) == nil {
			return s
		}
	}
	return string(v)
}
