package extractors

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"strings"
)

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findAll(root *html.Node, a atom.Atom) []*html.Node {
	var nodes []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == a {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

func findFirst(root *html.Node, a atom.Atom) *html.Node {
	nodes := findAll(root, a)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func isInvisible(n *html.Node) bool {
	return n.Type == html.ElementNode &&
		(n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Head || n.DataAtom == atom.Noscript)
}

// textSegments returns the non-empty text nodes under n in document order.
func textSegments(n *html.Node) []string {
	var segments []string
	walk(n, func(node *html.Node) bool {
		if isInvisible(node) {
			return false
		}
		if node.Type == html.TextNode {
			if text := collapse(node.Data); text != "" {
				segments = append(segments, text)
			}
		}
		return true
	})
	return segments
}

func nodeText(n *html.Node) string {
	return collapse(strings.Join(textSegments(n), " "))
}

// htmlText strips markup from a fragment and decodes entities. Plain text passes through.
func htmlText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	return nodeText(doc)
}
