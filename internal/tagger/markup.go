package tagger

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseBody parses an HTML document or fragment and returns its <body>.
func ParseBody(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if body := Find(doc, atom.Body); body != nil {
		return body, nil
	}
	return doc, nil
}

// TagString tags an HTML fragment and renders it back to markup.
func TagString(markup string, opts Options) (string, *Result, error) {
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return "", nil, fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	res, err := Tag(container, opts)
	if err != nil {
		return "", nil, err
	}
	out, err := Render(container)
	if err != nil {
		return "", nil, err
	}
	return out, res, nil
}

// Render renders the children of n.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

// UnitIndex returns the data-id of a marker element.
func UnitIndex(n *html.Node) (int, bool) {
	if !isMarker(n) {
		return 0, false
	}
	i, err := strconv.Atoi(attr(n, AttrID))
	if err != nil {
		return 0, false
	}
	return i, true
}

func newMarker(index int, content string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: AttrID, Val: strconv.Itoa(index)},
			{Key: AttrType, Val: TypeWord},
		},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: content})
	return n
}

func isMarker(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Span &&
		attr(n, AttrType) == TypeWord && hasAttr(n, AttrID)
}

func isWrapper(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Span &&
		attr(n, AttrType) == TypeText
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Find returns the first element of type a under n in document order.
func Find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, a); found != nil {
			return found
		}
	}
	return nil
}
