// Package normalize converts raw message payloads into display-ready
// plain text.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// tagPattern matches one HTML-ish tag span. Tags are assumed to be
// non-nested; each match is the shortest span between < and >.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Normalize converts a raw payload into plain text. The result may be
// empty, in which case the caller drops the message.
//
// Payloads whose trimmed text starts with { are tried as JSON first: an
// object with a text field is unwrapped one level (the unwrapped text
// is not re-checked for JSON); an object with a payload field and no
// text field short-circuits to a synthetic "[Interactive: <type>]"
// label. Parse failures fall through to the plain-text pass.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	if strings.HasPrefix(strings.TrimSpace(raw), "{") {
		var doc map[string]any
		if err := json.Unmarshal([]byte(raw), &doc); err == nil {
			if text, ok := doc["text"]; ok {
				if s, isString := text.(string); isString {
					raw = s
				}
			} else if _, ok := doc["payload"]; ok {
				kind := "template"
				if s, isString := doc["type"].(string); isString && s != "" {
					kind = s
				}
				return fmt.Sprintf("[Interactive: %s]", kind)
			}
		}
	}

	clean := tagPattern.ReplaceAllString(raw, "")
	clean = strings.ReplaceAll(clean, "&nbsp;", " ")
	clean = strings.ReplaceAll(clean, "&amp;", "&")
	clean = strings.ReplaceAll(clean, "&quot;", `"`)
	return clean
}
