// Package markdown analyzes document structure for evaluation reports.
// Parsing goes through goldmark so heading detection matches what real
// markdown renderers see, rather than a line-prefix heuristic.
package markdown

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is a single heading in document order
type Heading struct {
	Level int
	Title string
}

// Stats summarizes the structural features of a markdown document
type Stats struct {
	Headings   []Heading
	CodeBlocks int
	Links      int
	Images     int
	WordCount  int
}

// Analyze parses content and collects structural stats. Empty content
// yields zeroed stats, never an error.
func Analyze(content string) *Stats {
	stats := &Stats{
		WordCount: len(strings.Fields(content)),
	}
	if strings.TrimSpace(content) == "" {
		return stats
	}

	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			stats.Headings = append(stats.Headings, Heading{
				Level: v.Level,
				Title: string(v.Text(source)),
			})
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			stats.CodeBlocks++
		case *ast.Link:
			stats.Links++
		case *ast.Image:
			stats.Images++
		}
		return ast.WalkContinue, nil
	})

	return stats
}

// Outline renders the heading hierarchy as an indented bullet list.
// Returns an empty string for documents with no headings.
func (s *Stats) Outline() string {
	if len(s.Headings) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, h := range s.Headings {
		sb.WriteString(strings.Repeat("  ", h.Level-1))
		sb.WriteString("- ")
		sb.WriteString(h.Title)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary renders a one-line structural summary for reports.
func (s *Stats) Summary() string {
	return fmt.Sprintf("%d headings, %d code blocks, %d links, %d words",
		len(s.Headings), s.CodeBlocks, s.Links, s.WordCount)
}
