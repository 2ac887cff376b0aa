package surface

import (
	"sort"
	"strconv"
)

// Surface is a retained drawing surface owned by one chart. Nodes are painted by
// ascending Z, then in insertion order.
type Surface struct {
	width      float64
	height     float64
	Background string

	nodes  []*Node
	byID   map[string]*Node
	nextID int
}

func New(width, height float64) *Surface {
	return &Surface{
		width:      width,
		height:     height,
		Background: "#ffffff",
		byID:       make(map[string]*Node),
	}
}

func (s *Surface) Size() (float64, float64) {
	return s.width, s.height
}

func (s *Surface) Resize(width, height float64) {
	s.width, s.height = width, height
}

// Add appends a node and assigns it an id when it has none.
func (s *Surface) Add(n *Node) *Node {
	if n == nil {
		return nil
	}
	if n.ID == "" {
		s.nextID++
		n.ID = "n" + strconv.Itoa(s.nextID)
	}
	if old, ok := s.byID[n.ID]; ok {
		s.Remove(old)
	}
	s.nodes = append(s.nodes, n)
	s.byID[n.ID] = n
	return n
}

func (s *Surface) Remove(n *Node) bool {
	if n == nil {
		return false
	}
	for i, it := range s.nodes {
		if it == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			delete(s.byID, n.ID)
			return true
		}
	}
	return false
}

// RemoveLayer drops every node of the layer and returns how many were removed.
func (s *Surface) RemoveLayer(layer string) int {
	kept := s.nodes[:0]
	removed := 0
	for _, n := range s.nodes {
		if n.Layer == layer {
			delete(s.byID, n.ID)
			removed++
			continue
		}
		kept = append(kept, n)
	}
	for i := len(kept); i < len(s.nodes); i++ {
		s.nodes[i] = nil
	}
	s.nodes = kept
	return removed
}

func (s *Surface) Find(id string) *Node {
	return s.byID[id]
}

// Layer returns the nodes of one layer in insertion order.
func (s *Surface) Layer(layer string) []*Node {
	var out []*Node
	for _, n := range s.nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}

func (s *Surface) Nodes() []*Node {
	return append([]*Node(nil), s.nodes...)
}

func (s *Surface) Len() int {
	return len(s.nodes)
}

func (s *Surface) Clear() {
	s.nodes = nil
	s.byID = make(map[string]*Node)
}

// HitTest returns the topmost rect node under the surface point, including invisible ones.
func (s *Surface) HitTest(x, y float64) *Node {
	ordered := s.ordered()
	for i := len(ordered) - 1; i >= 0; i-- {
		n := ordered[i]
		if !n.Hidden && n.Contains(x, y) {
			return n
		}
	}
	return nil
}

func (s *Surface) ordered() []*Node {
	out := s.Nodes()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Z < out[j].Z })
	return out
}
