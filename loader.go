package osge

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/ArchorByte/osge-sub000/assets"
)

// white is the vertex color of loaded models, leaving the texture unmodulated
var white = mgl32.Vec3{1, 1, 1}

// QuadMesh is the geometry drawn when no model could be loaded: a unit square in the z=0
// plane with one color per corner
func QuadMesh() Mesh {
	return Mesh{
		Vertices: VertexData{
			{Pos: mgl32.Vec3{-0.5, -0.5, 0}, Color: mgl32.Vec3{1, 0, 0}, TexCoord: mgl32.Vec2{1, 0}},
			{Pos: mgl32.Vec3{0.5, -0.5, 0}, Color: mgl32.Vec3{0, 1, 0}, TexCoord: mgl32.Vec2{0, 0}},
			{Pos: mgl32.Vec3{0.5, 0.5, 0}, Color: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
			{Pos: mgl32.Vec3{-0.5, 0.5, 0}, Color: mgl32.Vec3{1, 1, 1}, TexCoord: mgl32.Vec2{1, 1}},
		},
		Indices: IndexData{0, 1, 2, 2, 3, 0},
	}
}

// MeshFromModel converts a parsed model into renderer vertices
func MeshFromModel(m *assets.Model) Mesh {
	mesh := Mesh{
		Vertices: make(VertexData, len(m.Vertices)),
		Indices:  append(IndexData(nil), m.Indices...),
	}
	for i, v := range m.Vertices {
		mesh.Vertices[i] = Vertex{Pos: v.Pos, Color: white, TexCoord: v.TexCoord}
	}
	return mesh
}

// LoadMeshes parses every model in dir and merges them into one mesh so that a single
// indexed draw covers all of them. Models that fail to load are logged and skipped. When
// nothing loads the result is QuadMesh.
func LoadMeshes(dir string, log *slog.Logger) Mesh {
	var mesh Mesh
	paths, err := assets.ScanDir(dir, assets.ModelExts...)
	if err != nil {
		log.Warn("no models loaded", slog.String("dir", dir), slog.Any("error", err))
	}
	for _, p := range paths {
		m, err := assets.LoadOBJ(p)
		if err != nil {
			log.Warn("skipping model", slog.String("path", p), slog.Any("error", err))
			continue
		}
		mesh.Append(MeshFromModel(m))
		log.Info("model loaded",
			slog.String("name", m.Name),
			slog.Int("vertices", len(m.Vertices)),
			slog.Int("indices", len(m.Indices)))
	}
	if len(mesh.Indices) == 0 {
		log.Info("drawing the built in quad")
		return QuadMesh()
	}
	return mesh
}

// LoadTextures decodes every image in dir and uploads it. Images that fail to decode or
// upload are logged and skipped. When nothing loads a single white texel is uploaded so
// the sampler array is never empty.
func (pool *CommandPool) LoadTextures(ctx *DeviceContext, dir string, maxSize int, log *slog.Logger) ([]*Texture, error) {
	var textures []*Texture
	paths, err := assets.ScanDir(dir, assets.TextureExts...)
	if err != nil {
		log.Warn("no textures loaded", slog.String("dir", dir), slog.Any("error", err))
	}
	for _, p := range paths {
		img, err := assets.LoadTexture(p, maxSize)
		if err != nil {
			log.Warn("skipping texture", slog.String("path", p), slog.Any("error", err))
			continue
		}
		t, err := pool.CreateTexture(ctx, img.Name, img.Width, img.Height, img.Pixels, log)
		if err != nil {
			log.Warn("skipping texture", slog.String("path", p), slog.Any("error", err))
			continue
		}
		textures = append(textures, t)
		log.Info("texture loaded",
			slog.String("name", img.Name),
			slog.Int("width", img.Width),
			slog.Int("height", img.Height))
	}

	if len(textures) == 0 {
		t, err := pool.CreateTexture(ctx, "white", 1, 1, []byte{255, 255, 255, 255}, log)
		if err != nil {
			return nil, errors.Wrap(err, "creating fallback texture")
		}
		textures = append(textures, t)
	}
	return textures, nil
}
