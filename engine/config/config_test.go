package config

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlDoc = `
asset_root = "assets"
object = "mesh1"
environment = "env1"

[window]
title = "showroom"
width = 1024
height = 768
vsync = false

[viewer]
preset = "showcase"
tone_mapping_exposure = 2.5
fit_axis = [0.0, 0.0, 10.0]
clear_color = "#102030"
use_effects = true

[viewer.viewport_offset]
left = 320.0

[[resources]]
id = "mesh1"
type = "glb"
url = "models/a.glb"

[[resources]]
id = "env1"
type = "hdr"
url = "env/b.hdr"
`

const yamlDoc = `
object: mesh1
environment: env1
viewer:
  padding: {top: 0.05, bottom: 0.05, left: 0.05, right: 0.05}
  angular_offset: [0.5, -0.25]
  orthographic_size: 400
  use_orthographic: true
  samples: 4
resources:
  - id: mesh1
    type: mesh-bundle
    url: a.gltf
  - id: env1
    type: environment-map
    url: b.hdr
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "viewer.toml", tomlDoc)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "assets"), c.AssetRoot)
	assert.Equal(t, "showroom", c.Window.Title)
	assert.Equal(t, 1024, c.Window.Width)
	require.NotNil(t, c.Window.VSync)
	assert.False(t, *c.Window.VSync)
	assert.Equal(t, []resource.Resource{
		{ID: "mesh1", Type: resource.TypeMeshBundle, URL: "models/a.glb"},
		{ID: "env1", Type: resource.TypeEnvironmentMap, URL: "env/b.hdr"},
	}, c.Resources)

	o, err := c.ViewerOptions()
	require.NoError(t, err)
	showcase := viewer.ShowcaseOptions()
	assert.Equal(t, float32(2.5), o.ToneMappingExposure)
	assert.Equal(t, showcase.Padding, o.Padding, "unset overrides keep the preset")
	assert.Equal(t, showcase.AngularOffset, o.AngularOffset)
	assert.Equal(t, common.Vec3{Z: 10}, o.FitAxis)
	assert.Equal(t, common.Insets{Left: 320}, o.ViewportOffset)
	assert.Equal(t, common.NewColorHex(0x102030), o.ClearColor)
	assert.True(t, o.UseEffects)
	assert.Equal(t, 8, o.Samples)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "viewer.yml", yamlDoc)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, c.AssetRoot)
	assert.Equal(t, resource.TypeMeshBundle, c.Resources[0].Type)

	o, err := c.ViewerOptions()
	require.NoError(t, err)
	base := viewer.DefaultOptions()
	assert.Equal(t, base.ToneMappingExposure, o.ToneMappingExposure)
	assert.Equal(t, common.Insets{Top: 0.05, Bottom: 0.05, Left: 0.05, Right: 0.05}, o.Padding)
	assert.Equal(t, common.Vec2{X: 0.5, Y: -0.25}, o.AngularOffset)
	assert.Equal(t, float32(400), o.OrthographicSize)
	assert.True(t, o.UseOrthographic)
	assert.Equal(t, 4, o.Samples)
	assert.Equal(t, base.ClearColor, o.ClearColor)
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	dir, err := os.MkdirTemp(home, "oxy-viewer-config-")
	if err != nil {
		t.Skip("home directory is not writable")
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	writeFile(t, dir, "viewer.toml", "asset_root = \"~/models\"\n")

	c, err := Load("~/" + filepath.Base(dir) + "/viewer.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models"), c.AssetRoot)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "viewer.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, dir, "unknown.toml", "colour = \"red\"\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(writeFile(t, dir, "badtype.yaml", "resources:\n  - {id: a, type: obj, url: a.obj}\n"))
	assert.ErrorContains(t, err, "unknown resource type")
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"missing id":       "[[resources]]\ntype = \"glb\"\nurl = \"a.glb\"\n",
		"missing url":      "[[resources]]\nid = \"a\"\ntype = \"glb\"\n",
		"duplicate":        "[[resources]]\nid = \"a\"\ntype = \"glb\"\nurl = \"a.glb\"\n[[resources]]\nid = \"a\"\ntype = \"hdr\"\nurl = \"b.hdr\"\n",
		"unknown object":   "object = \"nope\"\n",
		"object type":      "object = \"e\"\n[[resources]]\nid = \"e\"\ntype = \"hdr\"\nurl = \"b.hdr\"\n",
		"environment type": "environment = \"m\"\n[[resources]]\nid = \"m\"\ntype = \"glb\"\nurl = \"a.glb\"\n",
		"preset":           "[viewer]\npreset = \"fancy\"\n",
		"angular offset":   "[viewer]\nangular_offset = [1.0]\n",
		"fit axis":         "[viewer]\nfit_axis = [0.0, 1.0]\n",
		"clear color":      "[viewer]\nclear_color = \"#12\"\n",
		"negative window":  "[window]\nwidth = -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc), FormatTOML)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	c, err := Decode(nil, FormatYAML)
	require.NoError(t, err, "an empty document is a valid configuration")
	o, err := c.ViewerOptions()
	require.NoError(t, err)
	assert.Equal(t, viewer.DefaultOptions().ToneMappingExposure, o.ToneMappingExposure)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#f2f2f2")
	require.NoError(t, err)
	assert.Equal(t, common.NewColorHex(0xf2f2f2), c)

	c, err = ParseColor("FF0000")
	require.NoError(t, err)
	assert.Equal(t, common.Color{R: 1, A: 1}, c)

	_, err = ParseColor("#gggggg")
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("a/B.TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	f, err = FormatFor("c.yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFor("noext")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "viewer.toml", "[viewer]\ntone_mapping_exposure = 1.0\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan *Config, 64)
	require.NoError(t, Watch(ctx, path, func(c *Config, err error) {
		if err != nil {
			return
		}
		select {
		case reloads <- c:
		default:
		}
	}))

	writeFile(t, dir, "other.toml", "[viewer]\ntone_mapping_exposure = 9.0\n")
	writeFile(t, dir, "viewer.toml", "[viewer]\ntone_mapping_exposure = 3.0\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-reloads:
			if c.Viewer.ToneMappingExposure == nil {
				continue
			}
			exposure := *c.Viewer.ToneMappingExposure
			assert.NotEqual(t, float32(9), exposure, "other files are ignored")
			if math.Abs(float64(exposure-3)) < 1e-6 {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchRejectsUnsupportedFormat(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "viewer.ini"), func(*Config, error) {})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
