/*
Package domain contains the node graph data model.

It defines the fundamental entities edited by the graph editor and lowered by the
compiler: networks of typed computation nodes, the links between them, and the
tagged values those links carry. This package is kept pure and free of external
dependencies like I/O or persistence; it owns no execution logic.

# Key Entities

  - NodeNetwork: one nesting level of the graph (nodes, boundary inputs, outputs,
    preview stash, disabled set).
  - DocumentNode: a placed node; its implementation is either a registered
    primitive type or a nested NodeNetwork.
  - NodeInput: a literal value, a link to another node's output, or a boundary
    placeholder fed by the enclosing network.
  - TaggedValue: the closed set of payloads a link can carry.
*/
package domain
