/*
Package dsl provides a fluent builder for constructing node networks in Go.

It is the programmatic counterpart of the YAML and JSON documents read by the
file adapter, and is mostly used by tests, examples and embedded hosts. Nodes
start from their catalog defaults; only the inputs that differ are set.

Example usage:

	b := dsl.New(registry.Builtin())

	b.Add(1, "Number").Set(0, domain.Number(3))
	b.Add(2, "Add").At(8, 0).Link(0, 1).Expose(1, domain.Number(4))
	b.Add(3, "Output").At(16, 0).Link(0, 2)
	b.Output(3, 0)

	network, err := b.Build()
*/
package dsl
