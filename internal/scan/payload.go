// Package scan reconciles scanned QR payloads against the catalog and the
// scanning user's library.
package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotJSON marks a payload that survived textual cleanup but still is
	// not a JSON object.
	ErrNotJSON = errors.New("could not parse payload as JSON")

	// ErrMissingFields marks a JSON payload without the required book
	// reference.
	ErrMissingFields = errors.New("payload must contain uuid, title, author")
)

// ScannedBook is the minimal book reference a QR payload must carry.
type ScannedBook struct {
	UUID   string
	Title  string
	Author string
}

// entityReplacer undoes the small set of HTML entities some QR generators
// emit around JSON payloads.
var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&#34;", `"`,
	"&#39;", "'",
	"&apos;", "'",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// isInvisible reports zero-width characters that QR generators and
// copy-paste chains sneak into field values.
func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func cleanField(s string) string {
	s = strings.Map(func(r rune) rune {
		if isInvisible(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Parse turns a raw scanned string into the JSON object it carries: strips a
// leading BOM, decodes HTML entities, unwraps data: URIs, and extracts the
// outermost brace window before decoding.
func Parse(raw string) (map[string]any, error) {
	cleaned := strings.TrimSpace(entityReplacer.Replace(stripBOM(raw)))

	if strings.HasPrefix(cleaned, "data:") {
		if comma := strings.Index(cleaned, ","); comma > 0 {
			if decoded, err := url.PathUnescape(cleaned[comma+1:]); err == nil {
				cleaned = decoded
			}
		}
	}

	candidate := cleaned
	if i0, i1 := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); i0 >= 0 && i1 > i0 {
		candidate = cleaned[i0 : i1+1]
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, err)
	}
	return doc, nil
}

// Extract pulls the book reference out of a decoded payload, unwrapping a
// nested "book" or "data" object and accepting any casing of the keys.
// Field values are stripped of zero-width characters and trimmed; a missing
// or empty uuid, title, or author rejects the payload.
func Extract(doc map[string]any) (ScannedBook, error) {
	if nested, ok := childObject(doc, "book"); ok {
		doc = nested
	} else if nested, ok := childObject(doc, "data"); ok {
		doc = nested
	}

	book := ScannedBook{
		UUID:   cleanField(stringField(doc, "uuid")),
		Title:  cleanField(stringField(doc, "title")),
		Author: cleanField(stringField(doc, "author")),
	}
	if book.UUID == "" || book.Title == "" || book.Author == "" {
		return ScannedBook{}, ErrMissingFields
	}

	// Canonicalize well-formed UUIDs so lookups don't miss on casing.
	if id, err := uuid.Parse(book.UUID); err == nil {
		book.UUID = id.String()
	}
	return book, nil
}

// ParsePayload is Parse followed by Extract.
func ParsePayload(raw string) (ScannedBook, error) {
	doc, err := Parse(raw)
	if err != nil {
		return ScannedBook{}, err
	}
	return Extract(doc)
}

func childObject(doc map[string]any, key string) (map[string]any, bool) {
	if v, ok := doc[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m, true
		}
	}
	return nil, false
}

// stringField returns the value for the first case variant of key present,
// preferring an exact match, then common casings, then any fold-equal key.
func stringField(doc map[string]any, key string) string {
	titled := strings.ToUpper(key[:1]) + key[1:]
	for _, k := range []string{key, strings.ToUpper(key), titled} {
		if v, ok := doc[k]; ok {
			if s, ok := coerceString(v); ok {
				return s
			}
		}
	}
	for k, v := range doc {
		if strings.EqualFold(k, key) {
			if s, ok := coerceString(v); ok {
				return s
			}
		}
	}
	return ""
}

// coerceString accepts strings and JSON numbers; some QR generators emit
// bare numeric identifiers.
func coerceString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}
