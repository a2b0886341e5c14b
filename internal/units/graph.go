package units

// scaleEdge records that From is defined relative to To.
type scaleEdge struct {
	From string
	To   string
}

// scaleGraph is the dependency graph of scale relations between quantities.
type scaleGraph struct {
	nodes map[string]*Quantity
	edges []scaleEdge

	// Index for faster lookup: name -> outgoing targets
	out map[string][]string
}

func newScaleGraph() *scaleGraph {
	return &scaleGraph{
		nodes: make(map[string]*Quantity),
		edges: []scaleEdge{},
		out:   make(map[string][]string),
	}
}

func (g *scaleGraph) addUnit(q *Quantity) {
	if q == nil {
		return
	}
	g.nodes[q.name] = q
}

// link adds the edges q -> ref for every quantity the relation refers to.
func (g *scaleGraph) link(q *Quantity, refs []*Quantity) {
	g.addUnit(q)
	for _, r := range refs {
		g.addUnit(r)
		g.edges = append(g.edges, scaleEdge{From: q.name, To: r.name})
		g.out[q.name] = append(g.out[q.name], r.name)
	}
}

// reaches reports whether to is reachable from from along scale relations.
func (g *scaleGraph) reaches(from, to string) bool {
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g.out[n]...)
	}
	return false
}

// dependencies returns the quantities q is directly defined in terms of.
func (g *scaleGraph) dependencies(name string) []*Quantity {
	var deps []*Quantity
	for _, edge := range g.edges {
		if edge.From == name {
			if q, ok := g.nodes[edge.To]; ok {
				deps = append(deps, q)
			}
		}
	}
	return deps
}

// dependents returns the quantities directly defined in terms of q.
func (g *scaleGraph) dependents(name string) []*Quantity {
	var deps []*Quantity
	for _, edge := range g.edges {
		if edge.To == name {
			if q, ok := g.nodes[edge.From]; ok {
				deps = append(deps, q)
			}
		}
	}
	return deps
}
