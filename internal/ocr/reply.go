package ocr

import (
	"encoding/json"
	"fmt"
	"math"
)

// PageSeparator joins the text of consecutive pages in a reply
const PageSeparator = "\n\n--- page break ---\n\n"

// Meta is the optional timing metadata attached to a reply
type Meta struct {
	DurationMs *float64 `json:"duration_ms,omitempty"`
	Pages      *int     `json:"pages,omitempty"`
}

// Reply is the OCR service's success body
type Reply struct {
	Engine string `json:"engine,omitempty"`
	Lang   string `json:"lang,omitempty"`
	Text   string `json:"text"`
	Meta   *Meta  `json:"meta,omitempty"`
}

// errorBody is the OCR service's failure body
type errorBody struct {
	Detail string `json:"detail"`
}

// decodeReply parses a success body. Fields of the wrong type are dropped
// rather than failing the whole reply.
func decodeReply(body []byte) (*Reply, error) {
	var loose struct {
		Engine json.RawMessage `json:"engine"`
		Lang   json.RawMessage `json:"lang"`
		Text   json.RawMessage `json:"text"`
		Meta   json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(body, &loose); err != nil {
		return nil, fmt.Errorf("unmarshaling reply: %w", err)
	}

	reply := &Reply{}
	_ = json.Unmarshal(loose.Engine, &reply.Engine)
	_ = json.Unmarshal(loose.Lang, &reply.Lang)
	if err := json.Unmarshal(loose.Text, &reply.Text); err != nil {
		reply.Text = ""
	}

	if len(loose.Meta) > 0 {
		var meta struct {
			DurationMs json.RawMessage `json:"duration_ms"`
			Pages      json.RawMessage `json:"pages"`
		}
		if err := json.Unmarshal(loose.Meta, &meta); err == nil {
			m := &Meta{}
			var d float64
			if json.Unmarshal(meta.DurationMs, &d) == nil {
				m.DurationMs = &d
			}
			var p float64
			if json.Unmarshal(meta.Pages, &p) == nil && p >= 0 && p == math.Trunc(p) {
				n := int(p)
				m.Pages = &n
			}
			reply.Meta = m
		}
	}

	return reply, nil
}
