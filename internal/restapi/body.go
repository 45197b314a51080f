package restapi

import (
	"fmt"

	"github.com/a2a402/gateway/internal/catalog"
	"github.com/a2a402/gateway/internal/message"
	"github.com/a2a402/gateway/internal/parser"
)

// requestBody is the JSON body a REST x402 POST carries. Which of
// Content/URL is required depends on the target skill.
type requestBody struct {
	Content       string `json:"content"`
	URL           string `json:"url"`
	Network       string `json:"network"`
	From          string `json:"from"`
	SessionWallet string `json:"sessionWallet"`
	SessionToken  string `json:"sessionToken"`
}

// requestFor validates body against skill s's required field and builds the
// parser.Request the engine dispatches on directly (the keyword parser
// never runs on the REST surface — the skill is already named in the
// route).
func requestFor(s catalog.Skill, body requestBody) (parser.Request, error) {
	if s.ID == catalog.SkillScreenshot {
		if body.URL == "" {
			return parser.Request{}, fmt.Errorf("url is required")
		}
		return parser.Request{SkillID: s.ID, URL: body.URL}, nil
	}
	if body.Content == "" {
		return parser.Request{}, fmt.Errorf("content is required")
	}
	return parser.Request{SkillID: s.ID, Content: body.Content}, nil
}

// partsFor builds the single text part a request's task history records.
func partsFor(req parser.Request) []message.Part {
	text := req.Content
	if text == "" {
		text = req.URL
	}
	return []message.Part{{Kind: message.PartKindText, Text: text}}
}

// paymentHeader returns the opaque payment evidence header, preferring
// Payment-Signature over X-Payment if both are present.
func paymentHeader(get func(string) string) string {
	if v := get("Payment-Signature"); v != "" {
		return v
	}
	return get("X-Payment")
}
