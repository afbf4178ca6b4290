package ingest

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText strips markup, drops script/style content, and collapses
// whitespace into single-newline-separated non-blank lines.
func HTMLToText(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return collapseLines(sb.String())
}

func collapseLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		// Multi-headline lines separated by runs of spaces become a
		// line each.
		for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				out = append(out, chunk)
			}
		}
	}
	return strings.Join(out, "\n")
}
