package validate_test

import (
	"fmt"

	"github.com/WhiteBite/diaflow/pkg/ir"
	"github.com/WhiteBite/diaflow/pkg/validate"
)

func ExampleCheck() {
	// An edge pointing at a node that does not exist.
	d := ir.New("demo")
	d.Nodes = []ir.Node{{ID: "a"}}
	d.Edges = []ir.Edge{{ID: "e1", Source: "a", Target: "ghost"}}

	rep := validate.Check(d, validate.Options{SkipLayout: true})

	fmt.Println("Valid:", rep.Valid)
	for _, issue := range rep.Errors {
		fmt.Println(issue)
	}
	// Output:
	// Valid: false
	// edges[0].target: node "ghost" not found
}

func ExampleCheck_emptyDiagram() {
	// Empty diagrams are valid; the missing content is only a warning.
	rep := validate.Check(ir.New("empty"), validate.Options{})

	fmt.Println("Valid:", rep.Valid)
	fmt.Println("Warnings:", len(rep.Warnings))
	// Output:
	// Valid: true
	// Warnings: 1
}

func ExampleIsValid() {
	d := ir.New("demo")
	d.Nodes = []ir.Node{{ID: "a"}, {ID: "b"}}
	d.Edges = []ir.Edge{{ID: "a-b", Source: "a", Target: "b"}}

	// Construction-time options: references on, geometry not yet expected.
	ok := validate.IsValid(d, validate.Options{SkipLayout: true})
	fmt.Println(ok)
	// Output:
	// true
}
