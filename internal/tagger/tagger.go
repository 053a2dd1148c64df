// Package tagger walks a parsed HTML tree and wraps every speakable word in
// a marker element carrying a dense, zero-based data-id.
//
// Tagging rewrites the tree in place. A tree that has already been tagged is
// re-indexed rather than wrapped a second time, so tagging is idempotent.
package tagger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/metcalfc/aloud/internal/text"
)

const (
	AttrID   = "data-id"
	AttrType = "data-type"

	// TypeWord marks an addressable unit.
	TypeWord = "WORD"
	// TypeText marks the wrapper that replaced an original text node.
	TypeText = "TEXT"
)

// Unit is one addressable word of the document.
type Unit struct {
	Index int
	Text  string
	// Node is the marker element inside the tagged tree.
	Node *html.Node
}

// Segment is a piece of the document in reading order, used to render it.
type Segment struct {
	Text string
	// Unit is the index of the unit this segment shows, or -1 for text that
	// is displayed but never spoken.
	Unit int
	// Break separates block-level elements.
	Break bool
}

// Heading is a section title found while tagging.
type Heading struct {
	Level int
	Title string
	// Unit is the first unit of the heading.
	Unit int
}

type Options struct {
	// ExcludeCode leaves <code> and <pre> content untagged.
	ExcludeCode bool
}

type Result struct {
	Root     *html.Node
	Units    []Unit
	Segments []Segment
	Headings []Heading
}

// Texts returns the text of every unit in index order.
func (r *Result) Texts() []string {
	out := make([]string, len(r.Units))
	for i, u := range r.Units {
		out[i] = u.Text
	}
	return out
}

var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Head:     true,
	atom.Title:    true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Aside: true,
	atom.Main: true, atom.Blockquote: true, atom.Pre: true, atom.Ul: true,
	atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Figure: true, atom.Figcaption: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true,
	atom.H6: true, atom.Hr: true, atom.Br: true,
}

// Tag wraps the words under root and returns the units it produced.
func Tag(root *html.Node, opts Options) (res *Result, err error) {
	if root == nil {
		return nil, fmt.Errorf("tag: nil root")
	}
	t := &walker{opts: opts, res: &Result{Root: root}}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("tag: malformed tree: %v", r)
		}
	}()
	t.children(root)
	return t.res, nil
}

// walker carries the running index for one tagging pass.
type walker struct {
	opts Options
	next int
	res  *Result
}

func (t *walker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		// c may be replaced below.
		next := c.NextSibling
		switch c.Type {
		case html.ElementNode:
			t.element(c)
		case html.TextNode:
			t.text(c)
		}
		c = next
	}
}

func (t *walker) element(n *html.Node) {
	switch {
	case skipped[n.DataAtom]:
		return
	case isMarker(n):
		t.remark(n)
		return
	case isWrapper(n):
		t.children(n)
		return
	case t.opts.ExcludeCode && (n.DataAtom == atom.Code || n.DataAtom == atom.Pre):
		t.raw(n)
		return
	}

	block := blocks[n.DataAtom]
	if block {
		t.brk()
	}
	first := t.next
	t.children(n)
	if level := headingLevel(n.DataAtom); level > 0 && t.next > first {
		words := make([]string, 0, t.next-first)
		for _, u := range t.res.Units[first:t.next] {
			words = append(words, u.Text)
		}
		t.res.Headings = append(t.res.Headings, Heading{
			Level: level,
			Title: text.JoinSentence(words),
			Unit:  first,
		})
	}
	if block {
		t.brk()
	}
}

func (t *walker) text(n *html.Node) {
	if n.Parent != nil && isWrapper(n.Parent) {
		t.plain(n.Data)
		return
	}
	if strings.TrimSpace(n.Data) == "" {
		if n.Data != "" {
			t.plain(" ")
		}
		return
	}

	wrapper := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     []html.Attribute{{Key: AttrType, Val: TypeText}},
	}
	words := splitWords(n.Data)
	for i, w := range words {
		if w == "" {
			continue
		}
		if text.IsSpecialUnreadable(w) || text.IsWordInsideAngleBrackets(w) {
			wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: w + " "})
			t.plain(w + " ")
			continue
		}
		content := w
		if !tight(w, nextWord(words, i)) {
			content += " "
		}
		marker := newMarker(t.next, content)
		wrapper.AppendChild(marker)
		t.add(w, marker, content)
	}
	n.Parent.InsertBefore(wrapper, n)
	n.Parent.RemoveChild(n)
}

// remark re-indexes a marker left by an earlier pass.
func (t *walker) remark(n *html.Node) {
	content := textContent(n)
	setAttr(n, AttrID, strconv.Itoa(t.next))
	t.add(strings.TrimSpace(content), n, content)
}

// raw records excluded content as display-only text.
func (t *walker) raw(n *html.Node) {
	t.brk()
	lines := strings.Split(textContent(n), "\n")
	for i, line := range lines {
		if i > 0 {
			t.brk()
		}
		if line != "" {
			t.plain(line)
		}
	}
	t.brk()
}

func (t *walker) add(word string, node *html.Node, content string) {
	t.res.Units = append(t.res.Units, Unit{Index: t.next, Text: word, Node: node})
	t.res.Segments = append(t.res.Segments, Segment{Text: content, Unit: t.next})
	t.next++
}

func (t *walker) plain(s string) {
	t.res.Segments = append(t.res.Segments, Segment{Text: s, Unit: -1})
}

func (t *walker) brk() {
	segs := t.res.Segments
	if len(segs) == 0 || segs[len(segs)-1].Break {
		return
	}
	t.res.Segments = append(segs, Segment{Unit: -1, Break: true})
}

// splitWords normalizes the text of one node and splits it into words.
func splitWords(s string) []string {
	chars := strings.Split(s, "")

	kept := make([]string, 0, len(chars))
	for i, c := range chars {
		if text.IsSpace(c) {
			next := at(chars, i+1)
			if text.IsPunctuation(next) || text.IsSpace(next) {
				continue
			}
		}
		kept = append(kept, c)
	}

	var b strings.Builder
	for i, c := range kept {
		prev, next := at(kept, i-1), at(kept, i+1)
		switch {
		case isBlank(c):
			b.WriteByte(' ')
		case text.IsSpecialReadable(c):
			b.WriteString(" " + c + " ")
		case text.IsDot(c) && text.IsNumber(prev) && text.IsNumber(next):
			b.WriteString(c)
		case text.IsDot(c) && text.IsWordWithNumbers(prev) && text.IsWordWithNumbers(next):
			b.WriteString(" . ")
		case text.IsPunctuationButDot(c) && text.IsWord(prev) && text.IsWord(next):
			b.WriteString(c + " ")
		default:
			b.WriteString(c)
		}
	}
	return strings.Split(b.String(), " ")
}

// tight reports whether a marker should be rendered without a trailing space.
func tight(word, next string) bool {
	return text.IsSpecialReadable(word) || text.IsSpecialReadable(next) ||
		text.IsDot(word) || text.IsDot(next) || text.IsZero(word)
}

func nextWord(words []string, i int) string {
	for j := i + 1; j < len(words); j++ {
		if words[j] != "" {
			return words[j]
		}
	}
	return ""
}

func isBlank(c string) bool {
	if c == " " {
		return false
	}
	for _, r := range c {
		return unicode.IsSpace(r)
	}
	return false
}

func at(s []string, i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}
