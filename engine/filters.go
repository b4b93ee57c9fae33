package engine

// ============================================================================
// FILTERS — Dimension-based selection via RecordView
// ============================================================================
// Single-pass filter: checks ALL dimension constraints per record in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// ApplySelection returns a view of records matching sel.
// An empty selection returns the original view.
func ApplySelection(view RecordView, sel Selection) RecordView {
	if sel.IsEmpty() {
		return view
	}
	return newSubView(view, SelectIndices(view, sel))
}

// SelectIndices returns the positions of records matching sel, in view order.
func SelectIndices(view RecordView, sel Selection) []int {
	n := view.Len()
	if sel.IsEmpty() {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	sets := make(map[string]map[string]bool, len(sel))
	for dim, allowed := range sel {
		if len(allowed) == 0 {
			return []int{} // an empty set admits nothing
		}
		sets[dim] = toSet(allowed)
	}

	// Single pass — record passes if it matches ALL dimension sets
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for dim, set := range sets {
			if !set[view.Dimension(i, dim)] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}
	return indices
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
