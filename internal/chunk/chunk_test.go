package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		units []string
		want  []Chunk
	}{
		{
			name:  "two sentences",
			units: []string{"Hello", "world.", "Nice", "day!"},
			want: []Chunk{
				{Text: "Hello world.", Length: 2, Start: 0, End: 1, Idx: 0},
				{Text: "Nice day!", Length: 2, Start: 2, End: 3, Idx: 1},
			},
		},
		{
			name:  "unterminated tail uses the default terminator",
			units: []string{"Version", "1.23", "released"},
			want: []Chunk{
				{Text: "Version 1.23 released.", Length: 3, Start: 0, End: 2, Idx: 0},
			},
		},
		{
			name:  "unterminated tail ignores the previous sentence's terminator",
			units: []string{"Really?", "Yes", "indeed"},
			want: []Chunk{
				{Text: "Really?", Length: 1, Start: 0, End: 0, Idx: 0},
				{Text: "Yes indeed.", Length: 2, Start: 1, End: 2, Idx: 1},
			},
		},
		{
			name:  "question then unterminated word",
			units: []string{"Are", "you", "sure?", "Yes"},
			want: []Chunk{
				{Text: "Are you sure?", Length: 3, Start: 0, End: 2, Idx: 0},
				{Text: "Yes.", Length: 1, Start: 3, End: 3, Idx: 1},
			},
		},
		{
			name:  "runs of terminators stay together",
			units: []string{"Wow!!", "Stop;", "go"},
			want: []Chunk{
				{Text: "Wow!!", Length: 1, Start: 0, End: 0, Idx: 0},
				{Text: "Stop;", Length: 1, Start: 1, End: 1, Idx: 1},
				{Text: "go.", Length: 1, Start: 2, End: 2, Idx: 2},
			},
		},
		{
			name:  "dots inside a sentence",
			units: []string{"see", "some", ".", "text", "now."},
			want: []Chunk{
				{Text: "see some.text now.", Length: 5, Start: 0, End: 4, Idx: 0},
			},
		},
		{
			name:  "punctuation only unit joins the previous chunk",
			units: []string{"Done.", "?!", "Next", "one."},
			want: []Chunk{
				{Text: "Done.", Length: 2, Start: 0, End: 1, Idx: 0},
				{Text: "Next one.", Length: 2, Start: 2, End: 3, Idx: 1},
			},
		},
		{
			name:  "leading punctuation carries into the first chunk",
			units: []string{"!!", "Hi", "there."},
			want: []Chunk{
				{Text: "Hi there.", Length: 3, Start: 0, End: 2, Idx: 0},
			},
		},
		{
			name:  "only punctuation",
			units: []string{"!!"},
			want: []Chunk{
				{Text: "!!", Length: 1, Start: 0, End: 0, Idx: 0},
			},
		},
		{
			name:  "empty",
			units: nil,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.units))
		})
	}
}

func TestSplitCoversEveryUnitOnce(t *testing.T) {
	inputs := [][]string{
		{"Hello", "world.", "Nice", "day!"},
		{"a", "b", "c"},
		{"One.", "Two.", "Three.", "!", "four", ",", "five?"},
		{".", "..", "...", "x"},
		{"?", "a.", "?!", "b"},
	}
	for _, units := range inputs {
		chunks := Split(units)
		require.NotEmpty(t, chunks, units)

		next := 0
		for i, c := range chunks {
			assert.Equal(t, i, c.Idx)
			assert.Equal(t, next, c.Start, units)
			assert.Equal(t, c.Start+c.Length-1, c.End)
			assert.Positive(t, c.Length)
			next = c.End + 1
		}
		assert.Equal(t, len(units), next, units)

		for i := range units {
			c, ok := Find(chunks, i)
			require.True(t, ok)
			assert.True(t, c.Contains(i))
		}
		assert.Equal(t, chunks, Split(units), "deterministic")
	}
}

func TestFindOutOfRange(t *testing.T) {
	chunks := Split([]string{"a", "b."})
	_, ok := Find(chunks, 2)
	assert.False(t, ok)
	_, ok = Find(chunks, -1)
	assert.False(t, ok)
}

func TestCutTerminator(t *testing.T) {
	tests := []struct {
		in, body, term string
		ok             bool
	}{
		{"word", "word", "", false},
		{"word.", "word", ".", true},
		{"why?!", "why", "?!", true},
		{"1.23", "1.23", "", false},
		{".", ".", "", false},
		{"...", ".", "..", true},
		{"", "", "", false},
	}
	for _, tt := range tests {
		body, term, ok := cutTerminator(tt.in)
		assert.Equal(t, tt.body, body, tt.in)
		assert.Equal(t, tt.term, term, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
