package document

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/metcalfc/aloud/internal/tagger"
)

// EPUBFormat joins the spine documents of an EPUB into one HTML body, one
// <section> per spine item.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Markup(filename string) (string, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return "", fmt.Errorf("no rootfiles found in epub")
	}
	book := rc.Rootfiles[0]
	titles := navTitles(filename, book)

	var out strings.Builder
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		title := titles[ref.Item.HREF]
		if title == "" {
			title = titles[path.Base(ref.Item.HREF)]
		}
		section, err := spineSection(string(data), title)
		if err != nil || section == "" {
			continue
		}
		out.WriteString(section)
	}
	return out.String(), nil
}

// spineSection renders the body of one spine document as a <section>. When
// the document has no heading of its own, title becomes its <h1>.
func spineSection(doc, title string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}
	body := tagger.Find(root, atom.Body)
	if body == nil {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("<section>")
	if title != "" && !hasHeading(body) {
		b.WriteString("<h1>" + html.EscapeString(title) + "</h1>")
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	b.WriteString("</section>\n")
	return b.String(), nil
}

func hasHeading(n *html.Node) bool {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasHeading(c) {
			return true
		}
	}
	return false
}
