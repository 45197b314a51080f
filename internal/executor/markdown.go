package executor

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/a2a402/gateway/internal/parser"
)

// MarkdownToHTML renders Markdown text to a minimal HTML document locally —
// no external dependency. It is the gateway's one free skill.
type MarkdownToHTML struct{}

// NewMarkdownToHTML creates a MarkdownToHTML executor.
func NewMarkdownToHTML() *MarkdownToHTML { return &MarkdownToHTML{} }

// Execute implements Executor.
func (MarkdownToHTML) Execute(_ context.Context, req parser.Request) (Result, error) {
	body := renderMarkdown(req.Content)
	doc := fmt.Sprintf("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"></head><body>\n%s\n</body></html>\n", body)
	return Result{ContentType: "text/html", Data: []byte(doc)}, nil
}

// MarkdownToPDF wraps the Markdown source, with heading, bold and italic
// markers stripped, in a minimal, valid single-page PDF container. No
// external rendering dependency — good enough fidelity for a priced conversion skill whose point is the payment flow,
// not typographic quality.
type MarkdownToPDF struct{}

// NewMarkdownToPDF creates a MarkdownToPDF executor.
func NewMarkdownToPDF() *MarkdownToPDF { return &MarkdownToPDF{} }

// Execute implements Executor.
func (MarkdownToPDF) Execute(_ context.Context, req parser.Request) (Result, error) {
	plain := stripMarkdown(req.Content)
	return Result{ContentType: "application/pdf", Data: buildMinimalPDF(plain)}, nil
}

var (
	headingPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.*)$`)
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.+?)\*`)
)

func renderMarkdown(src string) string {
	lines := strings.Split(src, "\n")
	var out strings.Builder
	inParagraph := false
	closeParagraph := func() {
		if inParagraph {
			out.WriteString("</p>\n")
			inParagraph = false
		}
	}
	for _, line := range lines {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			closeParagraph()
			level := len(m[1])
			fmt.Fprintf(&out, "<h%d>%s</h%d>\n", level, inline(m[2]), level)
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			closeParagraph()
			continue
		}
		if !inParagraph {
			out.WriteString("<p>")
			inParagraph = true
		} else {
			out.WriteString(" ")
		}
		out.WriteString(inline(trimmed))
	}
	closeParagraph()
	return out.String()
}

func inline(text string) string {
	escaped := html.EscapeString(text)
	escaped = boldPattern.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = italicPattern.ReplaceAllString(escaped, "<em>$1</em>")
	return escaped
}

func stripMarkdown(src string) string {
	out := headingPattern.ReplaceAllString(src, "$2")
	out = boldPattern.ReplaceAllString(out, "$1")
	out = italicPattern.ReplaceAllString(out, "$1")
	return out
}

// buildMinimalPDF produces a valid, single-page PDF with text drawn by the
// Tj operator, wrapping at a fixed column count since this is not a layout
// engine.
func buildMinimalPDF(text string) []byte {
	escaped := strings.NewReplacer("\\", `\\`, "(", `\(`, ")", `\)`).Replace(text)
	lines := wrap(escaped, 90)

	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 50 750 Td 14 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", line)
	}
	content.WriteString("ET")
	stream := content.String()

	var buf strings.Builder
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, 5)

	writeObj := func(n int, body string) {
		offsets[n-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /MediaBox [0 0 612 792] /Contents 5 0 R >>")
	writeObj(4, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	offsets[4] = buf.Len()
	fmt.Fprintf(&buf, "5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream)

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xrefStart)

	return []byte(buf.String())
}

func wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			if len(cur)+len(w)+1 > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			if cur == "" {
				cur = w
			} else {
				cur += " " + w
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}
