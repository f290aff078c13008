package htmlutil

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("ratequote.pkg.htmlutil")

// ParseDocument parses an html document or fragment.
func ParseDocument(ctx context.Context, body []byte) (*goquery.Document, error) {
	_, span := tracer.Start(ctx, "ParseDocument")
	defer span.End()

	span.SetAttributes(attribute.Int("body_size", len(body)))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return doc, nil
}

// GetText concatenates every text node under node, in document order.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode && node.Data == "br" {
		buffer.WriteByte('\n')
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerSpaces = regexp.MustCompile(`[ \t]+`)
var innerNewlines = regexp.MustCompile(`\s*\n\s*`)

func removeNonPrintable(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if c == '\n' || unicode.IsPrint(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// CleanText approximates what a browser returns for an element's
// textContent after trimming: non-printable characters are dropped, runs of
// spaces are folded and line breaks between blocks are kept as a single "\n".
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = innerSpaces.ReplaceAllString(s, " ")
	s = innerNewlines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// SelectionText returns the cleaned text of every node in the selection.
func SelectionText(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer)
	}
	return CleanText(buffer.String())
}
