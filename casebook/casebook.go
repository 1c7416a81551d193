// Package casebook extracts compiler test cases from Markdown documents.  A
// case is introduced by a heading of the form `Test: <name>` and consists of
// exactly one `lowc` source fence followed by one or more assertion fences.
package casebook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SourceFence is the language of the fence holding the source of a case.
const SourceFence = "lowc"

// AssertionType is the language of an assertion fence.
type AssertionType string

const (
	// Every line must appear in the generated IR, in order.
	AssertIRContains AssertionType = "ir-contains"

	// No line may appear in the generated IR.
	AssertIRExcludes AssertionType = "ir-excludes"

	// Compilation must fail with the error kind named on the first line.
	// Any following line must be a substring of the error message.
	AssertCompileError AssertionType = "compile-error"
)

// Assertion is a single assertion fence of a case.
type Assertion struct {
	Type  AssertionType
	Lines []string
}

// Case is a complete test case.
type Case struct {
	Name       string
	Source     string
	Assertions []Assertion

	// Line is the line of the source fence in the document.
	Line int
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(markdown []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var cases []Case
	var current *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, markdown)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}

			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}

				cases = append(cases, *current)
			}

			current = &Case{Name: strings.TrimPrefix(heading, "Test: ")}
		case *ast.FencedCodeBlock:
			lang := string(n.Language(markdown))
			line := lineOf(n, markdown)

			// plain fences are prose
			if lang == "" {
				return ast.WalkContinue, nil
			}

			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, lang)
			}

			content := fenceContent(n, markdown)
			switch AssertionType(lang) {
			case AssertIRContains, AssertIRExcludes, AssertCompileError:
				current.Assertions = append(current.Assertions, Assertion{
					Type:  AssertionType(lang),
					Lines: splitLines(content),
				})
			default:
				if lang != SourceFence {
					return ast.WalkStop, fmt.Errorf("line %d: unknown fence language `%s` in test `%s`", line, lang, current.Name)
				}

				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple source fences in test `%s`", line, current.Name)
				}

				current.Source = content
				current.Line = line
			}
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}

		cases = append(cases, *current)
	}

	return cases, nil
}

// validate ensures a case has a source and at least one assertion.
func validate(c *Case) error {
	if c.Source == "" {
		return fmt.Errorf("test `%s` has no source fence", c.Name)
	}

	if len(c.Assertions) == 0 {
		return fmt.Errorf("test `%s` has no assertion fences", c.Name)
	}

	for _, a := range c.Assertions {
		if a.Type == AssertCompileError && len(a.Lines) == 0 {
			return fmt.Errorf("test `%s` has an empty compile-error fence", c.Name)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// nodeText extracts the plain text of a node.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}

		return ast.WalkContinue, nil
	})

	return buf.String()
}

// fenceContent extracts the content of a fenced code block.
func fenceContent(fence *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	lines := fence.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}

	return buf.String()
}

// splitLines splits s into its trimmed non-blank lines.
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// lineOf returns the line on which the content of node begins.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}

	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
