package scene

import "github.com/Carmen-Shannon/oxy-viewer/common"

// NodeBuilderOption is a functional option for configuring a Node.
// Use the With* functions to create options.
type NodeBuilderOption func(n *node)

// WithNodeName sets the node's name.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithNodeName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithTransform sets the node's initial local transform.
//
// Parameters:
//   - position: local translation
//   - rotation: local rotation, normalized before it is stored
//   - scale: local per-axis scale
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithTransform(position common.Vec3, rotation common.Quat, scale common.Vec3) NodeBuilderOption {
	return func(n *node) {
		n.position = position
		n.rotation = rotation.Normal()
		n.scale = scale
	}
}

// WithMeshes attaches meshes to the node.
//
// Parameters:
//   - meshes: the meshes to attach
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithMeshes(meshes ...*Mesh) NodeBuilderOption {
	return func(n *node) {
		for _, m := range meshes {
			if m != nil {
				n.meshes = append(n.meshes, m)
			}
		}
	}
}

// WithChildren attaches child nodes. Children with a previous parent are moved.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: option function to apply
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, c := range children {
			if c == nil {
				continue
			}
			if prev := c.Parent(); prev != nil {
				prev.Remove(c)
			}
			n.children = append(n.children, c)
			c.setParent(n)
		}
	}
}
