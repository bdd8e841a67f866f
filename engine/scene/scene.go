package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

const (
	rootName    = "root"
	systemName  = "system"
	contentName = "content"
)

type scene struct {
	mu          *sync.Mutex
	name        string
	root        Node
	system      Node
	content     Node
	environment Texture
}

// Scene is the graph rendered by the viewer. The root holds two groups: a system group for viewer-owned nodes
// (camera rigs, helpers) and a content group for loaded models. The scene also holds the environment texture used
// for image-based reflections.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Root returns the root node.
	Root() Node

	// System returns the group holding viewer-owned nodes.
	System() Node

	// Content returns the group holding loaded models.
	Content() Node

	// Add attaches a node to the content group.
	//
	// Parameters:
	//   - n: the node to attach
	Add(n Node)

	// Remove detaches a node from the content group.
	//
	// Parameters:
	//   - n: the node to detach
	Remove(n Node)

	// Clear detaches every node from the content group. The system group is kept.
	Clear()

	// Environment returns the environment texture, or nil if none is set.
	Environment() Texture

	// SetEnvironment sets the environment texture. Pass nil to remove it.
	//
	// Parameters:
	//   - t: the environment texture
	SetEnvironment(t Texture)

	// BoundingBox returns the world-space bounds of every mesh in the scene.
	//
	// Returns:
	//   - common.Box3: the bounds, empty when nothing with geometry is loaded
	BoundingBox() common.Box3
}

var _ Scene = &scene{}

// NewScene creates a new Scene with empty system and content groups.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.Mutex{},
		root:    NewNode(WithNodeName(rootName)),
		system:  NewNode(WithNodeName(systemName)),
		content: NewNode(WithNodeName(contentName)),
	}
	s.root.Add(s.system)
	s.root.Add(s.content)

	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Root() Node    { return s.root }
func (s *scene) System() Node  { return s.system }
func (s *scene) Content() Node { return s.content }

func (s *scene) Add(n Node) {
	s.content.Add(n)
}

func (s *scene) Remove(n Node) {
	s.content.Remove(n)
}

func (s *scene) Clear() {
	s.content.Clear()
}

func (s *scene) Environment() Texture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.environment
}

func (s *scene) SetEnvironment(t Texture) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.environment = t
}

func (s *scene) BoundingBox() common.Box3 {
	return s.root.BoundingBox()
}
