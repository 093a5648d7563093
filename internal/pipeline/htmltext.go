package pipeline

import (
	"bytes"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"golang.org/x/net/html"
)

// skippedElements never contribute visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"head":     true,
	"iframe":   true,
}

// blockElements end the current line of text.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"figcaption": true, "footer": true, "form": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"td": true, "th": true, "title": true, "tr": true, "ul": true,
}

// ExtractText returns the visible text of an HTML page, one line per
// block element. Whitespace inside a line is collapsed and empty lines
// are removed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	return cleanLines(b.String()), nil
}

// ExtractArticle returns the main content of an HTML page as plain text.
// Pages where no article can be found fall back to ExtractText.
func ExtractArticle(content, path string) (string, error) {
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}

	article, err := readability.FromReader(strings.NewReader(content), pageURL)
	if err == nil {
		var rendered bytes.Buffer
		if err := article.RenderText(&rendered); err == nil {
			if text := cleanLines(rendered.String()); text != "" {
				return text, nil
			}
		}
	}
	return ExtractText(strings.NewReader(content))
}

// cleanLines collapses runs of whitespace within each line, trims it and
// drops empty lines. The result ends with a newline unless it is empty.
func cleanLines(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var b strings.Builder
	for line := range strings.SplitSeq(raw, "\n") {
		clean := strings.Join(strings.Fields(line), " ")
		if clean == "" {
			continue
		}
		b.WriteString(clean)
		b.WriteByte('\n')
	}
	return b.String()
}

// isHTMLPath reports whether path has an HTML file extension.
func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}
