// Package archive builds the archive namespace of a site: date, section,
// simple and taxonomy listings arranged as a tree of nodes keyed by id path.
//
// Node ids are slash paths. Their depth decides the role of a node:
//
//	/                       virtual global root (depth 1)
//	/date                   type root (depth 2)
//	/date/post              root-name node, the first real archive page (depth 3)
//	/date/post/2024/03      nested node (depth 4 and more)
//
// Items refer to nodes through content.Item.ArchiveIDs and nodes refer to
// items through item ids, both resolved through the Tree.
package archive

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
	"git.home.luguber.info/inful/siteforge/internal/util/sets"
)

// Type roots.
const (
	TypeDate     = "date"
	TypeSection  = "section"
	TypeSimple   = "simple"
	TypeTaxonomy = "taxonomy"
)

// RootDepth is the depth of root-name nodes such as /date/post.
const RootDepth = 3

// Node is one archive in the tree.
type Node struct {
	ID       string
	Name     string
	Slug     string
	Title    string
	Type     string
	RootName string
	Depth    int

	ParentID string
	// Children holds child ids in creation order.
	Children    []string
	childByName map[string]string

	// Singles are the ids of items placed directly at this node, SinglesAll
	// the ids of items at this node or anywhere below it.
	Singles    []string
	SinglesAll []string
	singlesSet sets.Set[string]

	// IndexID is the section index document supplying this node's display
	// fields, if any.
	IndexID string
	Meta    map[string]any
	Summary string
	Image   *content.Image
	Content string

	ShouldRender bool
	ShouldOutput bool

	DestPath string
	DestDir  string
	RelURL   string
	AbsURL   string
	URL      string

	Paginator *Paginator
}

func (n *Node) String() string { return "Archive(" + n.ID + ")" }

// IsRoot reports whether n is a root-name node such as /date/post.
func (n *Node) IsRoot() bool { return n.Depth == RootDepth }

// Tree is the arena of archive nodes for one build.
type Tree struct {
	snap   config.Snapshot
	logger *slog.Logger

	nodes map[string]*Node
	order []string

	items     []*content.Item
	itemByID  map[string]*content.Item
	itemIndex map[string]int

	// Warnings collects non-fatal classification notices.
	Warnings []string
}

// New returns a tree holding the global root and the four type roots.
func New(snap config.Snapshot, items *content.Collection, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tree{
		snap:      snap,
		logger:    logger,
		nodes:     map[string]*Node{},
		itemByID:  map[string]*content.Item{},
		itemIndex: map[string]int{},
	}
	if items != nil {
		t.items = items.Items
		for i, item := range items.Items {
			t.itemByID[item.ID] = item
			t.itemIndex[item.ID] = i
		}
	}
	for _, typ := range []string{TypeDate, TypeSection, TypeSimple, TypeTaxonomy} {
		t.GetOrCreate("/" + typ)
	}
	return t
}

// Get returns the node with the given id.
func (t *Tree) Get(id string) (*Node, bool) {
	n, ok := t.nodes[cleanID(id)]
	return n, ok
}

// GetOrCreate returns the node for id, creating it and any missing ancestors
// first. Ancestors are created top-down, so creation order always lists a
// parent before its children.
func (t *Tree) GetOrCreate(id string) *Node {
	id = cleanID(id)
	if n, ok := t.nodes[id]; ok {
		return n
	}
	var missing []string
	for cur := id; cur != ""; cur = parentID(cur) {
		if _, ok := t.nodes[cur]; ok {
			break
		}
		missing = append(missing, cur)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		t.create(missing[i])
	}
	return t.nodes[id]
}

func (t *Tree) create(id string) {
	parts := splitID(id)
	name := urlpath.CleanName(path.Base(id))
	n := &Node{
		ID:           id,
		Name:         name,
		Slug:         urlpath.ToSlug(name),
		Title:        name,
		Depth:        len(parts),
		ParentID:     parentID(id),
		childByName:  map[string]string{},
		singlesSet:   sets.New[string](),
		ShouldRender: true,
		ShouldOutput: true,
	}
	if id == "/" {
		n.Name, n.Slug, n.Title = "", "", ""
	}
	if len(parts) >= 2 {
		n.Type = parts[1]
	}
	if len(parts) >= 3 {
		n.RootName = parts[2]
	}
	if parent, ok := t.nodes[n.ParentID]; ok {
		base := path.Base(id)
		parent.childByName[base] = id
		parent.Children = append(parent.Children, id)
	}
	t.nodes[id] = n
	t.order = append(t.order, id)
}

// Nodes returns every node in creation order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Parent returns the parent of n, or nil for the global root.
func (t *Tree) Parent(n *Node) *Node {
	return t.nodes[n.ParentID]
}

// Children returns the children of n in creation order.
func (t *Tree) Children(n *Node) []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		out = append(out, t.nodes[id])
	}
	return out
}

// Child returns the child of n with the given id segment.
func (t *Tree) Child(n *Node, name string) (*Node, bool) {
	id, ok := n.childByName[name]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// Ancestors returns the chain from the root-name node down to n's parent.
// Type roots and the global root are not included.
func (t *Tree) Ancestors(n *Node) []*Node {
	var chain []*Node
	for p := t.Parent(n); p != nil && p.Depth >= RootDepth; p = t.Parent(p) {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Items resolves item ids, skipping unknown ones.
func (t *Tree) Items(ids []string) []*content.Item {
	out := make([]*content.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := t.itemByID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Archives returns the nodes an item belongs to.
func (t *Tree) Archives(item *content.Item) []*Node {
	out := make([]*Node, 0, len(item.ArchiveIDs))
	for _, id := range item.ArchiveIDs {
		if n, ok := t.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// RootFor returns the root-name node of the given type and name, such as
// the "post" date archive.
func (t *Tree) RootFor(typ, name string) (*Node, bool) {
	return t.Get("/" + typ + "/" + name)
}

func (t *Tree) addSingle(n *Node, item *content.Item) {
	if n.singlesSet.Add(item.ID) == 0 {
		return
	}
	n.Singles = append(n.Singles, item.ID)
	item.AddArchive(n.ID)
}

func (t *Tree) warn(msg string, attrs ...slog.Attr) {
	t.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
	parts := []string{msg}
	for _, a := range attrs {
		parts = append(parts, a.String())
	}
	t.Warnings = append(t.Warnings, strings.Join(parts, " "))
}

func cleanID(id string) string {
	return path.Clean("/" + strings.Trim(id, "/"))
}

func parentID(id string) string {
	if id == "/" {
		return ""
	}
	return path.Dir(id)
}

// splitID returns ["", "date", "post"] style parts where the empty first
// element stands for the global root.
func splitID(id string) []string {
	if id == "/" {
		return []string{""}
	}
	return strings.Split(id, "/")
}

// Build creates the tree for items: post type archives, taxonomy archives,
// aggregate membership and section index linkage, in that order.
func Build(snap config.Snapshot, items *content.Collection, logger *slog.Logger) *Tree {
	t := New(snap, items, logger)
	t.ClassifyPostTypes()
	t.ClassifyTaxonomies()
	t.PropagateSinglesAll()
	t.LinkSectionIndexes()
	return t
}
