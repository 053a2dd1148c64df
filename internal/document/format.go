// Package document loads files into HTML markup the reader can tag.
package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Format converts one kind of file into HTML markup.
type Format interface {
	Name() string
	Extensions() []string
	Markup(filename string) (string, error)
}

// Document is a loaded file.
type Document struct {
	Title  string
	Format string
	Markup string
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Load reads filename with the registered format for its extension, falling
// back to plain text.
func Load(filename string) (*Document, error) {
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				markup, err := f.Markup(filename)
				if err != nil {
					return nil, fmt.Errorf("load %s as %s: %w", filename, f.Name(), err)
				}
				return &Document{Title: title, Format: f.Name(), Markup: markup}, nil
			}
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return &Document{Title: title, Format: "Text", Markup: FromText(string(data))}, nil
}

// Read loads a document from r. Input starting with a tag is taken as HTML.
func Read(r io.Reader, title string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", title, err)
	}
	s := string(data)
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		return &Document{Title: title, Format: "HTML", Markup: s}, nil
	}
	return &Document{Title: title, Format: "Text", Markup: FromText(s)}, nil
}

// FromText turns plain text into paragraphs, splitting on blank lines.
func FromText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(para))
		b.WriteString("</p>\n")
	}
	return b.String()
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
