package segment

// Group is a half-open range [Start, End) of filtered indices matched as one
// phrase.
type Group struct {
	Start int
	End   int
}

// Len returns the number of stems in the group.
func (g Group) Len() int { return g.End - g.Start }

// Indices lists the filtered indices covered by g.
func (g Group) Indices() []int {
	out := make([]int, 0, g.Len())
	for i := g.Start; i < g.End; i++ {
		out = append(out, i)
	}
	return out
}

// Reconstruct backtracks a choice table into left-to-right groups. Groups are
// pairwise disjoint, strictly increasing and each is as long as the choice
// recorded at its last index.
func Reconstruct(choices Choices) []Group {
	var groups []Group
	for i := len(choices) - 1; i >= 0; {
		size := choices[i]
		if size <= None {
			i--
			continue
		}
		// Never step past the start of the sequence, even on a corrupt table.
		size = min(size, i+1)
		groups = append(groups, Group{Start: i - size + 1, End: i + 1})
		i -= size
	}

	for l, r := 0, len(groups)-1; l < r; l, r = l+1, r-1 {
		groups[l], groups[r] = groups[r], groups[l]
	}
	return groups
}

// Coverage sums the lengths of groups.
func Coverage(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Len()
	}
	return total
}
