package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithContent attaches initial nodes to the content group.
//
// Parameters:
//   - nodes: the nodes to attach
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithContent(nodes ...Node) SceneBuilderOption {
	return func(s *scene) {
		for _, n := range nodes {
			s.content.Add(n)
		}
	}
}

// WithEnvironment sets the initial environment texture.
//
// Parameters:
//   - t: the environment texture
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEnvironment(t Texture) SceneBuilderOption {
	return func(s *scene) {
		s.environment = t
	}
}
