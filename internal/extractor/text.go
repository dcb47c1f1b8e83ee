package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// skippedTextParents hold raw text that is never rendered as page text.
var skippedTextParents = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

// strippedText concatenates the trimmed content of every text node under
// node, without separators. Empty nodes contribute nothing.
func strippedText(node *html.Node) string {
	var sb strings.Builder
	walkText(node, func(data string) {
		sb.WriteString(strings.TrimSpace(data))
	})
	return sb.String()
}

// innerText concatenates the raw content of every text node under node.
func innerText(node *html.Node) string {
	var sb strings.Builder
	walkText(node, func(data string) {
		sb.WriteString(data)
	})
	return sb.String()
}

func walkText(node *html.Node, visit func(string)) {
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			visit(n.Data)
			return
		case html.ElementNode:
			if skippedTextParents[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(node)
}

// hrefValue returns the href attribute of an element and whether it is present.
// An empty href is still present.
func hrefValue(node *html.Node) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Namespace == "" && attr.Key == "href" {
			return attr.Val, true
		}
	}
	return "", false
}
