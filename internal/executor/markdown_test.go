package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/a2a402/gateway/internal/parser"
)

func TestMarkdownToHTMLRendersHeadingsAndParagraphs(t *testing.T) {
	res, err := NewMarkdownToHTML().Execute(context.Background(), parser.Request{Content: "# Title\n\nSome **bold** text."})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ContentType != "text/html" {
		t.Fatalf("ContentType = %q, want text/html", res.ContentType)
	}
	out := string(res.Data)
	if !strings.Contains(out, "<h1>Title</h1>") {
		t.Fatalf("output missing rendered heading:\n%s", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("output missing rendered bold text:\n%s", out)
	}
}

func TestMarkdownToHTMLEscapesRawHTML(t *testing.T) {
	res, _ := NewMarkdownToHTML().Execute(context.Background(), parser.Request{Content: "<script>alert(1)</script>"})
	if strings.Contains(string(res.Data), "<script>alert(1)</script>") {
		t.Fatalf("raw HTML in input must be escaped, got:\n%s", res.Data)
	}
}

func TestMarkdownToPDFProducesValidHeaderAndTrailer(t *testing.T) {
	res, err := NewMarkdownToPDF().Execute(context.Background(), parser.Request{Content: "# Report\n\nBody text."})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.ContentType != "application/pdf" {
		t.Fatalf("ContentType = %q, want application/pdf", res.ContentType)
	}
	out := string(res.Data)
	if !strings.HasPrefix(out, "%PDF-1.4") {
		t.Fatalf("output missing PDF header")
	}
	if !strings.Contains(out, "%%EOF") {
		t.Fatalf("output missing PDF trailer")
	}
}
