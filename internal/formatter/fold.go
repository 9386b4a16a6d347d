package formatter

// FoldState tracks which container paths of the displayed value are expanded
// or collapsed. Explicit toggles are recorded per path; everything else
// falls back to the depth policy: containers at depth >= defaultDepth start
// collapsed, and a negative defaultDepth means fully expanded. A FoldState
// belongs to one displayed value — the aggregator replaces it whenever a
// fresh evaluation result replaces the tree.
type FoldState struct {
	overrides    map[string]bool
	defaultDepth int
}

// NewFoldState returns a FoldState with the given depth policy and no
// explicit toggles.
func NewFoldState(defaultDepth int) *FoldState {
	return &FoldState{
		overrides:    make(map[string]bool),
		defaultDepth: defaultDepth,
	}
}

// Collapsed reports whether the container at path (at the given tree depth)
// renders as a placeholder. A nil FoldState means fully expanded.
func (f *FoldState) Collapsed(path string, depth int) bool {
	if f == nil {
		return false
	}
	if v, ok := f.overrides[path]; ok {
		return v
	}
	return f.defaultDepth >= 0 && depth >= f.defaultDepth
}

// Toggle flips the fold of the container at path.
func (f *FoldState) Toggle(path string, depth int) {
	f.overrides[path] = !f.Collapsed(path, depth)
}

// Collapse marks path collapsed. Collapsing an already-collapsed path is a
// no-op, not a flip.
func (f *FoldState) Collapse(path string) {
	f.overrides[path] = true
}

// Expand marks path expanded.
func (f *FoldState) Expand(path string) {
	f.overrides[path] = false
}

// ExpandAll drops every toggle and the depth policy: everything renders
// expanded.
func (f *FoldState) ExpandAll() {
	f.overrides = make(map[string]bool)
	f.defaultDepth = -1
}

// CollapseAll drops every toggle and collapses from the root down. Toggling
// a path afterwards opens just that container, which keeps deep trees
// navigable one level at a time.
func (f *FoldState) CollapseAll() {
	f.overrides = make(map[string]bool)
	f.defaultDepth = 0
}
