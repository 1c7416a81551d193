package casebook

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractCases(t *testing.T) {
	doc := `# Arithmetic

Some prose with a plain fence:

` + fence + `
not a case
` + fence + `

## Test: add
` + fence + `lowc
fn add(a: int32, b: int32) -> int32 { return a + b; }
` + fence + `
` + fence + `ir-contains
add i32

ret i32
` + fence + `
` + fence + `ir-excludes
sub i32
` + fence + `

## Test: bad call
` + fence + `lowc
fn f() { g(); }
` + fence + `
` + fence + `compile-error
unknown identifier
g
` + fence + `
`

	cases, err := Extract([]byte(doc))
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	add := cases[0]
	be.Equal(t, add.Name, "add")
	be.True(t, strings.HasPrefix(add.Source, "fn add("))
	be.Equal(t, add.Line, 11)

	want := []Assertion{
		{Type: AssertIRContains, Lines: []string{"add i32", "ret i32"}},
		{Type: AssertIRExcludes, Lines: []string{"sub i32"}},
	}
	if diff := cmp.Diff(want, add.Assertions); diff != "" {
		t.Errorf("assertions mismatch (-want +got):\n%s", diff)
	}

	bad := cases[1]
	be.Equal(t, bad.Name, "bad call")
	be.Equal(t, bad.Assertions[0].Type, AssertCompileError)
	be.Equal(t, bad.Assertions[0].Lines, []string{"unknown identifier", "g"})
}

func TestExtractErrors(t *testing.T) {
	cases := map[string]string{
		"fence outside of case": fence + "lowc\nfn f() {}\n" + fence + "\n",
		"no source":             "## Test: a\n" + fence + "ir-contains\nret\n" + fence + "\n",
		"no assertions":         "## Test: a\n" + fence + "lowc\nfn f() {}\n" + fence + "\n",
		"two sources": "## Test: a\n" + fence + "lowc\nfn f() {}\n" + fence + "\n" +
			fence + "lowc\nfn g() {}\n" + fence + "\n",
		"unknown fence": "## Test: a\n" + fence + "lowc\nfn f() {}\n" + fence + "\n" +
			fence + "python\nprint()\n" + fence + "\n",
		"empty compile error": "## Test: a\n" + fence + "lowc\nfn f() {}\n" + fence + "\n" +
			fence + "compile-error\n" + fence + "\n",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Extract([]byte(doc))
			be.True(t, err != nil)
		})
	}
}
