// Package graph provides the dependency graph structures and Kahn's
// algorithm used to validate and order a batch's processes.
package graph

// Node represents one process in the dependency graph.
type Node struct {
	Name        string
	IsMilestone bool
}

// Edge represents a predecessor -> process relationship: the process named
// To cannot launch until the process named From has succeeded.
type Edge struct {
	From string
	To   string
}

// Graph represents the complete process dependency structure for a batch.
type Graph struct {
	Nodes    map[string]*Node
	Children map[string][]string // process name -> names of processes that depend on it
	Parents  map[string][]string // process name -> names of its predecessors
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:    make(map[string]*Node),
		Children: make(map[string][]string),
		Parents:  make(map[string][]string),
	}
}

// AddNode adds a process node to the graph. If node is nil, a new node with
// default values is created.
func (g *Graph) AddNode(name string, node *Node) {
	if node == nil {
		node = &Node{Name: name}
	}
	node.Name = name
	g.Nodes[name] = node
}

// AddEdge adds a predecessor -> process relationship to the graph. It also
// maintains the reverse mapping for efficient predecessor lookups.
func (g *Graph) AddEdge(predecessor, process string) {
	g.Children[predecessor] = append(g.Children[predecessor], process)
	g.Parents[process] = append(g.Parents[process], predecessor)
}

// GetChildren returns the names of processes that depend on the given process.
func (g *Graph) GetChildren(name string) []string {
	return g.Children[name]
}

// GetParents returns the predecessor names of the given process.
func (g *Graph) GetParents(name string) []string {
	return g.Parents[name]
}

// GetNode returns the node for a given process name, or nil if not found.
func (g *Graph) GetNode(name string) *Node {
	return g.Nodes[name]
}

// HasNode returns true if the graph contains a node with the given name.
func (g *Graph) HasNode(name string) bool {
	_, exists := g.Nodes[name]
	return exists
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.Children {
		count += len(children)
	}
	return count
}

// AllNodes returns a slice of all process names in the graph.
func (g *Graph) AllNodes() []string {
	nodes := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		nodes = append(nodes, name)
	}
	return nodes
}

// AllEdges returns a slice of all edges in the graph.
func (g *Graph) AllEdges() []Edge {
	var edges []Edge
	for parent, children := range g.Children {
		for _, child := range children {
			edges = append(edges, Edge{From: parent, To: child})
		}
	}
	return edges
}

// LeafNodes returns all nodes with no dependents.
func (g *Graph) LeafNodes() []string {
	var leaves []string
	for name := range g.Nodes {
		if len(g.Children[name]) == 0 {
			leaves = append(leaves, name)
		}
	}
	return leaves
}

// InDegree returns the number of predecessors for a node.
func (g *Graph) InDegree(name string) int {
	return len(g.Parents[name])
}

// OutDegree returns the number of dependents for a node.
func (g *Graph) OutDegree(name string) int {
	return len(g.Children[name])
}
