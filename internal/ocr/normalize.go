package ocr

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TranslationPlaceholder is displayed while no translation is available
const TranslationPlaceholder = "(translation pending)"

// Translation is either pending (never attempted or unavailable) or available.
// An available translation may legitimately be empty.
type Translation struct {
	available bool
	text      string
}

// TranslationPending is the translation of a result nobody has translated yet
func TranslationPending() Translation {
	return Translation{}
}

// TranslationOf wraps a translation returned by a translator
func TranslationOf(text string) Translation {
	return Translation{available: true, text: text}
}

// Available reports whether a translation was produced
func (t Translation) Available() bool {
	return t.available
}

// Text returns the translated text and whether it is available
func (t Translation) Text() (string, bool) {
	return t.text, t.available
}

// String returns the display form
func (t Translation) String() string {
	if !t.available {
		return TranslationPlaceholder
	}
	return t.text
}

// MarshalJSON encodes the translation as {"status": "pending"|"available", "text": ...}
func (t Translation) MarshalJSON() ([]byte, error) {
	status := "pending"
	if t.available {
		status = "available"
	}
	return json.Marshal(struct {
		Status string `json:"status"`
		Text   string `json:"text"`
	}{status, t.String()})
}

// Result is a reply normalized for display
type Result struct {
	RawText     string      `json:"raw_text"`
	Pages       []string    `json:"pages"`
	Meta        Meta        `json:"meta"`
	Translation Translation `json:"translation"`
}

// Normalize converts a reply into a display-ready result. It never fails and
// always yields at least one page.
func Normalize(reply *Reply) *Result {
	var text string
	var meta Meta
	if reply != nil {
		text = reply.Text
		if reply.Meta != nil {
			meta = *reply.Meta
		}
	}

	return &Result{
		RawText:     text,
		Pages:       SplitPages(text),
		Meta:        meta,
		Translation: TranslationPending(),
	}
}

// SplitPages splits combined text on the page separator
func SplitPages(text string) []string {
	return strings.Split(text, PageSeparator)
}

// DisplayDuration is the processing time in milliseconds, or "?" if unknown
func (r *Result) DisplayDuration() string {
	if r.Meta.DurationMs == nil {
		return "?"
	}
	return strconv.FormatFloat(*r.Meta.DurationMs, 'f', -1, 64)
}

// DisplayPageCount prefers the service's advisory page count over the split
func (r *Result) DisplayPageCount() int {
	if r.Meta.Pages != nil {
		return *r.Meta.Pages
	}
	return len(r.Pages)
}
