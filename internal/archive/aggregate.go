package archive

import (
	"cmp"
	"slices"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/util/sets"
)

// PropagateSinglesAll fills SinglesAll on every node below the type roots.
//
// Starting at each leaf, the walk moves upward to the root-name node; every
// parent accumulates its own direct members and the aggregate of the child
// it was reached from. Each list is then ordered like the item collection.
func (t *Tree) PropagateSinglesAll() {
	all := make(map[string]sets.Set[string], len(t.nodes))
	add := func(n *Node, ids []string) {
		set, ok := all[n.ID]
		if !ok {
			set = sets.New[string]()
			all[n.ID] = set
		}
		for _, id := range ids {
			if set.Add(id) == 1 {
				n.SinglesAll = append(n.SinglesAll, id)
			}
		}
	}

	for _, id := range t.order {
		n := t.nodes[id]
		n.SinglesAll = nil
	}
	for _, id := range t.order {
		n := t.nodes[id]
		if n.Depth < RootDepth || len(n.Children) > 0 {
			continue
		}
		add(n, n.Singles)
		for cur := n; cur.Depth > RootDepth; {
			parent := t.nodes[cur.ParentID]
			add(parent, parent.Singles)
			add(parent, cur.SinglesAll)
			cur = parent
		}
	}

	for _, id := range t.order {
		n := t.nodes[id]
		slices.SortStableFunc(n.SinglesAll, func(a, b string) int {
			return cmp.Compare(t.itemIndex[a], t.itemIndex[b])
		})
	}
}

// LinkSectionIndexes lets an index document stand in for its section
// archive. The node takes the item's display fields and destination, and the
// item itself is neither rendered nor written on its own.
func (t *Tree) LinkSectionIndexes() {
	for _, item := range t.items {
		if !item.IsIndex() || item.ArchiveType != config.ArchiveSection {
			continue
		}
		n, ok := t.Get("/" + TypeSection + "/" + item.SrcDir)
		if !ok {
			continue
		}
		n.IndexID = item.ID
		n.Title = item.Title
		n.Name = item.Name
		n.Slug = item.Slug
		n.Summary = item.Summary
		n.Image = item.Image
		n.Content = item.Content
		n.Meta = item.Meta
		n.ShouldRender = item.ShouldRender
		n.ShouldOutput = item.ShouldOutput

		item.ShouldRender = false
		item.ShouldOutput = false
	}
}
