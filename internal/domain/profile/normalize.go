package profile

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// blockedFields are non-semantic metadata keys excluded from normalization:
// identifiers, timestamps, flags, picture URLs, typename markers.
var blockedFields = map[string]struct{}{
	"userId":             {},
	"uid":                {},
	"id":                 {},
	"email":              {},
	"createdAt":          {},
	"updatedAt":          {},
	"lastLogin":          {},
	"timestamp":          {},
	"profileComplete":    {},
	"onboardingComplete": {},
	"isActive":           {},
	"isVerified":         {},
	"photoURL":           {},
	"profilePicture":     {},
	"avatarUrl":          {},
	"resumeUrl":          {},
	"__typename":         {},
}

// Normalize flattens an arbitrary profile mapping into a single indexable
// string. It is purely structural: sequences are space-joined, records are
// flattened recursively, scalars are stringified. Keys are visited in sorted
// order so the output is deterministic for a given profile.
func Normalize(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, blocked := blockedFields[k]; blocked {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fragments []string
	for _, k := range keys {
		if frag := flattenValue(fields[k]); frag != "" {
			fragments = append(fragments, frag)
		}
	}

	return cleanText(strings.Join(fragments, " "))
}

// flattenValue renders one profile value as flat text.
func flattenValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		// Some records arrive JSON-encoded inside a string field.
		if decoded, ok := decodeJSONRecord(val); ok {
			return flattenValue(decoded)
		}
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if frag := flattenValue(item); frag != "" {
				parts = append(parts, frag)
			}
		}
		return strings.Join(parts, " ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if frag := flattenValue(val[k]); frag != "" {
				parts = append(parts, frag)
			}
		}
		return strings.Join(parts, " ")
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return ""
	}
}

// decodeJSONRecord decodes a string that holds a JSON object or array.
func decodeJSONRecord(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return nil, false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, false
	}
	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

// cleanText strips structural punctuation and anything that is not
// alphanumeric, whitespace, '.' or '-', then collapses repeated whitespace.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r == '.' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
