// Package parser turns free-form text from a message into a (skill, args)
// tuple using ordered keyword and URL heuristics.
//
// The classification rules are deliberately imprecise and deterministic —
// spec.md §4.1 calls this out explicitly — and the ordering below is
// load-bearing. Do not reorder the checks.
package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/a2a402/gateway/internal/catalog"
)

// Request is the parsed (skill, args) tuple the engine dispatches on.
type Request struct {
	SkillID string
	// Content is the text argument for ai-analysis, markdown-to-pdf, and
	// markdown-to-html.
	Content string
	// URL is the target for screenshot.
	URL string
}

var aiCues = []string{"analyze", "analysis", "summarize", "summary", "gemini", "ai "}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Parse classifies free-form text into a skill request. Empty text still
// produces a result (rule 5's default), since the caller is responsible for
// rejecting empty text at the protocol layer.
func Parse(text string) Request {
	lower := strings.ToLower(text)

	// Rule 1: AI analysis cues win regardless of position.
	if idx, cue := firstCueIndex(lower, aiCues); idx >= 0 {
		content := afterCue(text, idx, cue)
		return Request{SkillID: catalog.SkillAIAnalysis, Content: content}
	}

	startsWithURL := urlPattern.FindStringIndex(lower) != nil && strings.Index(lower, urlPattern.FindString(lower)) == 0

	// Rule 2: pdf, unless the text begins with an http(s) URL.
	if strings.Contains(lower, "pdf") && !startsWithURL {
		return Request{SkillID: catalog.SkillMarkdownToPDF, Content: stripPreamble(text, "convert to pdf:")}
	}

	// Rule 3: html, unless the text begins with an http(s) URL.
	if strings.Contains(lower, "html") && !startsWithURL {
		return Request{SkillID: catalog.SkillMarkdownToHTML, Content: stripPreamble(text, "convert to html:")}
	}

	// Rule 4: any http(s) URL present.
	if loc := urlPattern.FindString(text); loc != "" {
		return Request{SkillID: catalog.SkillScreenshot, URL: normalizeURL(loc)}
	}

	// Rule 5: default.
	return Request{SkillID: catalog.SkillMarkdownToHTML, Content: text}
}

func firstCueIndex(lower string, cues []string) (int, string) {
	best := -1
	bestCue := ""
	for _, cue := range cues {
		if idx := strings.Index(lower, cue); idx >= 0 {
			if best == -1 || idx < best {
				best = idx
				bestCue = cue
			}
		}
	}
	return best, bestCue
}

// afterCue returns the text following the matched cue up to the next
// sentence-ending punctuation, or the whole original text if no such
// punctuation follows (or nothing follows the cue at all).
func afterCue(original string, idx int, cue string) string {
	rest := original[idx+len(cue):]
	rest = strings.TrimLeft(rest, " :,-")
	if rest == "" {
		return original
	}
	for _, p := range []string{".", "!", "?"} {
		if end := strings.Index(rest, p); end > 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return original
}

func stripPreamble(text, preamble string) string {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, preamble) {
		return strings.TrimSpace(text[len(preamble):])
	}
	return text
}

func normalizeURL(raw string) string {
	raw = strings.TrimRight(raw, ".,;!?)")
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return raw
	}
	return raw
}
