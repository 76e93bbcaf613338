// Package node defines the field tree handed back to the consumer of a
// decode call: domain-labeled nodes with optional scalar values and ordered
// children, mirroring the nesting of the decoded message. Trees are built
// top-down during decoding and read-only afterwards.
package node

import (
	"fmt"
	"strings"
)

// Node is one entry in the decoded field tree.
type Node struct {
	Label    string
	Value    string
	Children []*Node
}

// New returns a branch node with the given label.
func New(label string) *Node {
	return &Node{Label: label}
}

// Add appends a child branch and returns it for further population.
func (n *Node) Add(label string) *Node {
	c := &Node{Label: label}
	n.Children = append(n.Children, c)
	return c
}

// Leaf appends a labeled scalar child.
func (n *Node) Leaf(label, value string) {
	n.Children = append(n.Children, &Node{Label: label, Value: value})
}

// Leaff appends a labeled scalar child with a formatted value.
func (n *Node) Leaff(label, format string, args ...any) {
	n.Leaf(label, fmt.Sprintf(format, args...))
}

// Find returns the first child with the given label, depth-first, or nil.
func (n *Node) Find(label string) *Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
		if hit := c.Find(label); hit != nil {
			return hit
		}
	}
	return nil
}

// String renders the subtree with two-space indentation, one node per line.
// Intended for logs and tests, not for machine consumption.
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b, 0)
	return strings.TrimRight(b.String(), "\n")
}

func (n *Node) render(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Label)
	if n.Value != "" {
		b.WriteString(": ")
		b.WriteString(n.Value)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.render(b, depth+1)
	}
}
