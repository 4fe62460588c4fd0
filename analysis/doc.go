// Package analysis runs an abstract interpreter over a parsed SQF syntax
// tree and reports diagnostics.
//
// Values carry a symbolic [Kind] (Number, String, Array, Code, ...)
// instead of runtime data. Each statement is matched against the keyword
// signatures of a [Database]; operands of the wrong kind produce a
// warning naming every accepted combination, and code operands are
// analyzed in a new scope holding the keyword's implicit variables.
//
// Variables live in per-namespace scope stacks ([Namespaces]). Local
// names (leading underscore) must be declared with "private" or "params"
// before they are assigned in the declaring scope; globals assigned
// inside code blocks are reported.
//
// Code that is produced but never executed, such as a function stored in
// a variable, is analyzed after the file body against a snapshot of the
// file's variables:
//
//	res, err := analysis.Source(ctx, analysis.DefaultDatabase(), src,
//		analysis.WithFile("init.sqf"))
//	for _, d := range res.Diagnostics {
//		fmt.Println(d)
//	}
package analysis
