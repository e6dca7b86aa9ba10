package substitute

import "github.com/cognicore/mentions/pkg/mentions/dict"

// Mentions maps each entity to its positions in a rewritten stream and
// remembers the order in which entities were first seen.
type Mentions struct {
	order     []dict.EntityID
	positions map[dict.EntityID][]int
}

// NewMentions returns an empty set.
func NewMentions() *Mentions {
	return &Mentions{positions: make(map[dict.EntityID][]int)}
}

// Add appends a position for id.
func (m *Mentions) Add(id dict.EntityID, pos int) {
	if _, ok := m.positions[id]; !ok {
		m.order = append(m.order, id)
	}
	m.positions[id] = append(m.positions[id], pos)
}

// Entities returns the mentioned ids in first-mention order.
func (m *Mentions) Entities() []dict.EntityID {
	return append([]dict.EntityID(nil), m.order...)
}

// Positions returns the positions recorded for id, in mention order.
func (m *Mentions) Positions(id dict.EntityID) []int {
	return append([]int(nil), m.positions[id]...)
}

// Len returns the number of distinct entities.
func (m *Mentions) Len() int { return len(m.order) }

// Total returns the number of recorded mentions across all entities.
func (m *Mentions) Total() int {
	n := 0
	for _, p := range m.positions {
		n += len(p)
	}
	return n
}

// Map returns a copy of the id → positions table.
func (m *Mentions) Map() map[dict.EntityID][]int {
	out := make(map[dict.EntityID][]int, len(m.positions))
	for id, p := range m.positions {
		out[id] = append([]int(nil), p...)
	}
	return out
}
