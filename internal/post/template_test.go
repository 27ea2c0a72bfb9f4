package post

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	table := []struct {
		name     string
		content  string
		expected Post
		err      error
	}{
		{
			name: "standard template",
			content: `**Title**: I built a tool to clean messy CSVs

**Body**:
Hey everyone,

It runs locally.
`,
			expected: Post{
				Title: "I built a tool to clean messy CSVs",
				Body:  "Hey everyone,\n\nIt runs locally.",
			},
		},
		{
			name:     "body on the same line",
			content:  "**Title**:   Short  \n**Body**: one line body  ",
			expected: Post{Title: "Short", Body: "one line body"},
		},
		{
			name:     "preamble is ignored",
			content:  "# Draft 3\n\nnotes\n\n**Title**: T\n\n**Body**:\nB",
			expected: Post{Title: "T", Body: "B"},
		},
		{
			name:     "body marker without colon",
			content:  "**Title**: T\n\n**Body**\n\nthe body",
			expected: Post{Title: "T", Body: "the body"},
		},
		{
			name:     "empty body at end of file",
			content:  "**Title**: T\n**Body**:",
			expected: Post{Title: "T", Body: ""},
		},
		{
			name:    "missing title",
			content: "Title: T\n**Body**:\nB",
			err:     ErrMissingTitle,
		},
		{
			name:    "missing body",
			content: "**Title**: T\n\nBody: B",
			err:     ErrMissingBody,
		},
	}

	for _, row := range table {
		t.Run(row.name, func(t *testing.T) {
			result, err := Parse(row.content)
			if row.err != nil {
				require.ErrorIs(t, err, row.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, row.expected, result)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(path, []byte("**Title**: Hello\n\n**Body**:\nWorld\n"), 0600))

	result, err := ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, Post{Title: "Hello", Body: "World"}, result)

	_, err = ParseFile(filepath.Join(dir, "missing.md"))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.ErrorContains(t, err, "template not found")
}

func TestPreview(t *testing.T) {
	p := Post{Body: "héllo world"}
	require.Equal(t, "hél...", p.Preview(3))
	require.Equal(t, "héllo world...", p.Preview(100))
	require.Equal(t, "...", p.Preview(-1))
	require.Equal(t, "...", p.Preview(0))
}
