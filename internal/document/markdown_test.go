package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/aloud/internal/tagger"
)

func TestRenderMarkdownOutline(t *testing.T) {
	src := `# Introduction
This is the introduction.

## Getting Started
Here's how to get started.

### Prerequisites
You'll need these things installed.

# Advanced Topics
More complex stuff here.
`
	markup, err := RenderMarkdown([]byte(src))
	require.NoError(t, err)

	_, res, err := tagger.TagString(markup, tagger.Options{})
	require.NoError(t, err)

	var titles []string
	var levels []int
	last := -1
	for _, h := range res.Headings {
		titles = append(titles, h.Title)
		levels = append(levels, h.Level)
		assert.Greater(t, h.Unit, last)
		last = h.Unit
	}
	assert.Equal(t, []string{"Introduction", "Getting Started", "Prerequisites", "Advanced Topics"}, titles)
	assert.Equal(t, []int{1, 2, 3, 1}, levels)
}

func TestRenderMarkdownNoHeaders(t *testing.T) {
	markup, err := RenderMarkdown([]byte("This is just plain text.\nNo headers at all.\n"))
	require.NoError(t, err)

	_, res, err := tagger.TagString(markup, tagger.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Headings)
	assert.NotEmpty(t, res.Units)
}

func TestRenderMarkdownCode(t *testing.T) {
	markup, err := RenderMarkdown([]byte("Run this:\n\n```\nmake all\n```\n"))
	require.NoError(t, err)

	_, all, err := tagger.TagString(markup, tagger.Options{})
	require.NoError(t, err)
	_, prose, err := tagger.TagString(markup, tagger.Options{ExcludeCode: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"Run", "this:", "make", "all"}, all.Texts())
	assert.Equal(t, []string{"Run", "this:"}, prose.Texts())
}
