package report

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// DefaultTruncateLimit is the code point limit the backend applies to captured artifacts.
const DefaultTruncateLimit = 1024

// TruncatedText is a captured artifact capped at Limit code points.
// Truncated counts the code points that were dropped.
type TruncatedText struct {
	Content   string `json:"str"`
	Limit     int    `json:"limit"`
	Truncated int    `json:"truncated"`
}

// Truncate caps s at limit code points. A non-positive limit means DefaultTruncateLimit.
func Truncate(s string, limit int) TruncatedText {
	if limit <= 0 {
		limit = DefaultTruncateLimit
	}
	n := utf8.RuneCountInString(s)
	if n <= limit {
		return TruncatedText{Content: s, Limit: limit}
	}
	cut := 0
	for i := range s {
		if cut == limit {
			return TruncatedText{Content: s[:i], Limit: limit, Truncated: n - limit}
		}
		cut++
	}
	return TruncatedText{Content: s, Limit: limit}
}

// IsTruncated reports whether any code points were dropped.
func (t TruncatedText) IsTruncated() bool {
	return t.Truncated > 0
}

func (t TruncatedText) String() string {
	if t.Truncated == 0 {
		return t.Content
	}
	return fmt.Sprintf("%s...(%d characters truncated)", t.Content, t.Truncated)
}

func (t *TruncatedText) UnmarshalJSON(data []byte) error {
	type plain TruncatedText
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Truncated < 0 {
		return fmt.Errorf("truncated count %d is negative", raw.Truncated)
	}
	*t = TruncatedText(raw)
	return nil
}
