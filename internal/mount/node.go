// Package mount provides the minimal container tree a host UI mounts
// controls into.
package mount

import "sync"

// Node is a container element. A node has at most one parent.
type Node struct {
	mu       sync.Mutex
	tag      string
	parent   *Node
	children []*Node
}

// NewNode creates a detached, empty node.
func NewNode(tag string) *Node {
	return &Node{tag: tag}
}

// Tag returns the element tag the node was created with.
func (n *Node) Tag() string {
	return n.tag
}

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// Children returns a snapshot of the node's children.
func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// AppendChild attaches child as the last child of n, detaching it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) {
	if child == nil || child == n {
		return
	}
	if prev := child.Parent(); prev != nil {
		prev.RemoveChild(child)
	}

	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()

	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child *Node) bool {
	n.mu.Lock()
	found := false
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			found = true
			break
		}
	}
	n.mu.Unlock()

	if found {
		child.mu.Lock()
		child.parent = nil
		child.mu.Unlock()
	}
	return found
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}
