package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

type node struct {
	mu       *sync.Mutex
	name     string
	position common.Vec3
	rotation common.Quat
	scale    common.Vec3
	meshes   []*Mesh
	parent   Node
	children []Node
}

// Mesh is decoded geometry attached to a Node. Positions, normals and UVs are tightly packed per vertex.
type Mesh struct {
	Name      string
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
	// Bounds is the local-space bounding box of Positions.
	Bounds common.Box3
}

// Node is an element of the scene graph with a local transform relative to its parent.
// Nodes may carry decoded meshes; nodes without meshes only group and transform their children.
// Thread-safe for concurrent access.
type Node interface {
	// Name returns the node's name.
	Name() string

	// SetName sets the node's name.
	SetName(name string)

	// Position returns the local translation.
	Position() common.Vec3

	// SetPosition sets the local translation.
	//
	// Parameters:
	//   - p: the new translation
	SetPosition(p common.Vec3)

	// Rotation returns the local rotation.
	Rotation() common.Quat

	// SetRotation sets the local rotation.
	//
	// Parameters:
	//   - q: the new rotation, normalized before it is stored
	SetRotation(q common.Quat)

	// Scale returns the local per-axis scale.
	Scale() common.Vec3

	// SetScale sets the local per-axis scale.
	//
	// Parameters:
	//   - s: the new scale
	SetScale(s common.Vec3)

	// Meshes returns the meshes attached to this node.
	Meshes() []*Mesh

	// AddMesh attaches a mesh to this node.
	//
	// Parameters:
	//   - m: the mesh to attach
	AddMesh(m *Mesh)

	// LocalBounds returns the union of the attached meshes' bounds in local space.
	// Empty when the node has no meshes.
	LocalBounds() common.Box3

	// Parent returns the parent node, or nil for a detached node or a scene root.
	Parent() Node

	// Children returns a copy of the child list.
	Children() []Node

	// Add attaches child to this node, detaching it from any previous parent first.
	// Adding a node to itself is ignored.
	//
	// Parameters:
	//   - child: the node to attach
	Add(child Node)

	// Remove detaches child from this node. Nodes that are not children are ignored.
	//
	// Parameters:
	//   - child: the node to detach
	Remove(child Node)

	// Clear detaches all children.
	Clear()

	// LocalMatrix returns the column-major local transform (T * R * S).
	LocalMatrix() [16]float32

	// WorldMatrix returns the column-major transform from this node's space to world space.
	WorldMatrix() [16]float32

	// BoundingBox returns the world-space bounding box of every mesh in this node's subtree.
	//
	// Returns:
	//   - common.Box3: the bounds, empty when the subtree carries no meshes
	BoundingBox() common.Box3

	// Traverse calls fn for this node and every descendant, parents before children.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(Node))

	setParent(p Node)
}

var _ Node = &node{}

// NewNode creates a new Node with an identity transform.
//
// Parameters:
//   - options: variadic list of NodeBuilderOption functions to configure the node
//
// Returns:
//   - Node: the newly created node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		mu:       &sync.Mutex{},
		rotation: common.QuatIdentity,
		scale:    common.Vec3{X: 1, Y: 1, Z: 1},
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *node) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

func (n *node) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *node) Position() common.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position
}

func (n *node) SetPosition(p common.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = p
}

func (n *node) Rotation() common.Quat {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rotation
}

func (n *node) SetRotation(q common.Quat) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rotation = q.Normal()
}

func (n *node) Scale() common.Vec3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scale
}

func (n *node) SetScale(s common.Vec3) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = s
}

func (n *node) Meshes() []*Mesh {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Mesh, len(n.meshes))
	copy(out, n.meshes)
	return out
}

func (n *node) AddMesh(m *Mesh) {
	if m == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.meshes = append(n.meshes, m)
}

func (n *node) LocalBounds() common.Box3 {
	n.mu.Lock()
	defer n.mu.Unlock()
	box := common.EmptyBox3()
	for _, m := range n.meshes {
		box = box.Union(m.Bounds)
	}
	return box
}

func (n *node) Parent() Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

func (n *node) setParent(p Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = p
}

func (n *node) Children() []Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Node, len(n.children))
	copy(out, n.children)
	return out
}

func (n *node) Add(child Node) {
	if child == nil || child == Node(n) {
		return
	}
	if prev := child.Parent(); prev != nil {
		prev.Remove(child)
	}

	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()
	child.setParent(n)
}

func (n *node) Remove(child Node) {
	n.mu.Lock()
	removed := false
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			removed = true
			break
		}
	}
	n.mu.Unlock()

	if removed {
		child.setParent(nil)
	}
}

func (n *node) Clear() {
	n.mu.Lock()
	children := n.children
	n.children = nil
	n.mu.Unlock()

	for _, c := range children {
		c.setParent(nil)
	}
}

func (n *node) LocalMatrix() [16]float32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	var m [16]float32
	common.Compose(m[:], n.position, n.rotation, n.scale)
	return m
}

func (n *node) WorldMatrix() [16]float32 {
	local := n.LocalMatrix()
	parent := n.Parent()
	if parent == nil {
		return local
	}
	pw := parent.WorldMatrix()
	var out [16]float32
	common.Mul4(out[:], pw[:], local[:])
	return out
}

func (n *node) BoundingBox() common.Box3 {
	return subtreeBounds(n, n.WorldMatrix())
}

func (n *node) Traverse(fn func(Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.Traverse(fn)
	}
}

// subtreeBounds accumulates world bounds top-down so each node's world matrix is computed once.
func subtreeBounds(n Node, world [16]float32) common.Box3 {
	box := n.LocalBounds().ApplyMatrix4(world)
	for _, c := range n.Children() {
		local := c.LocalMatrix()
		var cw [16]float32
		common.Mul4(cw[:], world[:], local[:])
		box = box.Union(subtreeBounds(c, cw))
	}
	return box
}
