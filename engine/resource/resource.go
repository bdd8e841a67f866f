package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// ResourceType selects the decode capability a resource is loaded with.
type ResourceType int

const (
	// TypeMeshBundle is a 3D asset (glTF/GLB) decoded into a scene node.
	TypeMeshBundle ResourceType = iota
	// TypeEnvironmentMap is an image (usually HDR) decoded into an equirectangular environment texture.
	TypeEnvironmentMap
)

func (t ResourceType) String() string {
	switch t {
	case TypeMeshBundle:
		return "mesh-bundle"
	case TypeEnvironmentMap:
		return "environment-map"
	default:
		return fmt.Sprintf("ResourceType(%d)", int(t))
	}
}

// ParseResourceType maps a type name to a ResourceType. Besides the canonical names it accepts the file-format
// tags "glb" and "gltf" for mesh bundles and "hdr" for environment maps. Matching ignores case.
//
// Parameters:
//   - s: the type name
//
// Returns:
//   - ResourceType: the parsed type
//   - error: error if s names no known type
func ParseResourceType(s string) (ResourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mesh-bundle", "glb", "gltf":
		return TypeMeshBundle, nil
	case "environment-map", "hdr":
		return TypeEnvironmentMap, nil
	default:
		return 0, fmt.Errorf("unknown resource type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so resource manifests round-trip through TOML and YAML.
func (t ResourceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseResourceType.
func (t *ResourceType) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Resource describes an asset the pipeline can load.
type Resource struct {
	ID   string       `toml:"id" yaml:"id"`
	Type ResourceType `toml:"type" yaml:"type"`
	URL  string       `toml:"url" yaml:"url"`
}

// MeshDecoder decodes a mesh bundle into the root node of its scene graph.
type MeshDecoder interface {
	DecodeMesh(ctx context.Context, url string) (scene.Node, error)
}

// ImageDecoder decodes an image into a texture.
type ImageDecoder interface {
	DecodeImage(ctx context.Context, url string) (scene.Texture, error)
}
