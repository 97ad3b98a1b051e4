package catalog

import (
	"errors"
	"fmt"
	"sort"

	"store-service/internal/model"
)

var (
	// ErrCycle is returned when a parent assignment would make the
	// category hierarchy cyclic.
	ErrCycle = errors.New("category hierarchy cycle")

	// ErrUnknownParent is returned when the referenced parent category
	// does not exist.
	ErrUnknownParent = errors.New("unknown parent category")
)

// Node is one category with the ids of its direct children. The tree
// holds ids rather than pointers so a malformed parent chain can never
// send a traversal into a reference cycle.
type Node struct {
	Category model.ProductCategory `json:"category"`
	Children []uint                `json:"children"`
}

// Tree is an id-indexed arena over a category set.
type Tree struct {
	nodes map[uint]*Node
	roots []uint
}

// Build indexes the given categories. Categories whose parent is
// missing from the set are treated as roots.
func Build(categories []model.ProductCategory) *Tree {
	t := &Tree{nodes: make(map[uint]*Node, len(categories))}
	for _, c := range categories {
		t.nodes[c.ID] = &Node{Category: c}
	}
	for _, c := range categories {
		if c.ParentID != nil {
			if parent, ok := t.nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, c.ID)
				continue
			}
		}
		t.roots = append(t.roots, c.ID)
	}
	for _, n := range t.nodes {
		sort.Slice(n.Children, func(i, j int) bool { return n.Children[i] < n.Children[j] })
	}
	sort.Slice(t.roots, func(i, j int) bool { return t.roots[i] < t.roots[j] })
	return t
}

// Node returns the node for a category id, or nil.
func (t *Tree) Node(id uint) *Node {
	return t.nodes[id]
}

// Roots returns the top-level nodes in id order.
func (t *Tree) Roots() []*Node {
	out := make([]*Node, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.nodes[id])
	}
	return out
}

// Len returns the number of indexed categories.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// ValidateParent checks that assigning parentID to category id keeps
// the hierarchy acyclic. The walk follows the parent chain through the
// arena with a visited set, so it terminates even on already-corrupt
// data.
func ValidateParent(categories []model.ProductCategory, id uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return fmt.Errorf("category %d cannot be its own parent: %w", id, ErrCycle)
	}

	index := make(map[uint]*model.ProductCategory, len(categories))
	for i := range categories {
		index[categories[i].ID] = &categories[i]
	}
	if _, ok := index[*parentID]; !ok {
		return fmt.Errorf("category %d: %w", *parentID, ErrUnknownParent)
	}

	visited := map[uint]bool{id: true}
	for cur := index[*parentID]; cur != nil; {
		if visited[cur.ID] {
			return fmt.Errorf("category %d: %w", id, ErrCycle)
		}
		visited[cur.ID] = true
		if cur.ParentID == nil {
			return nil
		}
		cur = index[*cur.ParentID]
	}
	return nil
}
