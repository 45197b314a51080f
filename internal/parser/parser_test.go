package parser

import (
	"testing"

	"github.com/a2a402/gateway/internal/catalog"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantSkill string
		wantURL   string
	}{
		{
			name:      "ai cue wins regardless of position",
			text:      "please analyze this report for risk factors.",
			wantSkill: catalog.SkillAIAnalysis,
		},
		{
			name:      "pdf keyword",
			text:      "convert to pdf: # heading\nbody",
			wantSkill: catalog.SkillMarkdownToPDF,
		},
		{
			name:      "html keyword",
			text:      "convert to html: # heading",
			wantSkill: catalog.SkillMarkdownToHTML,
		},
		{
			name:      "bare URL falls through to screenshot",
			text:      "https://example.com/page",
			wantSkill: catalog.SkillScreenshot,
			wantURL:   "https://example.com/page",
		},
		{
			name:      "pdf mention after a leading URL still screenshots",
			text:      "https://example.com/report.pdf",
			wantSkill: catalog.SkillScreenshot,
			wantURL:   "https://example.com/report.pdf",
		},
		{
			name:      "default is markdown-to-html",
			text:      "# just some markdown",
			wantSkill: catalog.SkillMarkdownToHTML,
		},
		{
			name:      "empty text still produces a default result",
			text:      "",
			wantSkill: catalog.SkillMarkdownToHTML,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.text)
			if got.SkillID != tc.wantSkill {
				t.Fatalf("SkillID = %q, want %q", got.SkillID, tc.wantSkill)
			}
			if tc.wantURL != "" && got.URL != tc.wantURL {
				t.Fatalf("URL = %q, want %q", got.URL, tc.wantURL)
			}
		})
	}
}

func TestParseTrailingPunctuationStrippedFromURL(t *testing.T) {
	got := Parse("check out https://example.com/page).")
	if got.URL != "https://example.com/page" {
		t.Fatalf("URL = %q, want trailing punctuation stripped", got.URL)
	}
}
