// Package document implements the page model: a forest of sections holding
// columns holding widgets, with an undo/redo snapshot log.
package document

import (
	"strconv"
)

// Node is one element of the page tree.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Props    map[string]any `json:"props"`
	Children []*Node        `json:"children"`
}

// String returns a prop as a string. Bools render as "true"/"false".
func (n *Node) String(key string) string {
	switch v := n.Props[key].(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// Bool returns a prop as a bool. The string "false" and the empty string are false.
func (n *Node) Bool(key string) bool {
	switch v := n.Props[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// Has reports whether key is part of the node's prop set.
func (n *Node) Has(key string) bool {
	_, ok := n.Props[key]
	return ok
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:    n.ID,
		Type:  n.Type,
		Props: make(map[string]any, len(n.Props)),
	}
	for k, v := range n.Props {
		out.Props[k] = v
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Walk visits the node and its descendants depth-first, stopping when fn returns false.
func (n *Node) Walk(fn func(node, parent *Node) bool) bool {
	return n.walk(nil, fn)
}

func (n *Node) walk(parent *Node, fn func(node, parent *Node) bool) bool {
	if !fn(n, parent) {
		return false
	}
	for _, child := range n.Children {
		if !child.walk(n, fn) {
			return false
		}
	}
	return true
}

// CloneForest deep-copies a list of root nodes.
func CloneForest(forest []*Node) []*Node {
	out := make([]*Node, len(forest))
	for i, n := range forest {
		out[i] = n.Clone()
	}
	return out
}

// EqualForest reports whether two forests have identical ids, types, props and order.
func EqualForest(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalNode(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalNode(a, b *Node) bool {
	if a.ID != b.ID || a.Type != b.Type || len(a.Props) != len(b.Props) {
		return false
	}
	for k, v := range a.Props {
		if bv, ok := b.Props[k]; !ok || bv != v {
			return false
		}
	}
	return EqualForest(a.Children, b.Children)
}

// WalkForest visits every node of a forest depth-first.
func WalkForest(forest []*Node, fn func(node, parent *Node) bool) {
	for _, n := range forest {
		if !n.Walk(fn) {
			return
		}
	}
}
