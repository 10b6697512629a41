package assets

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// ModelExts are the model files the OBJ loader parses
var ModelExts = []string{".obj"}

// Vertex is one unique corner of a model face
type Vertex struct {
	Pos      mgl32.Vec3
	TexCoord mgl32.Vec2
	Normal   mgl32.Vec3
}

// Model is triangulated geometry with de-duplicated vertices
type Model struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// LoadOBJ parses the Wavefront OBJ file at path
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	m, err := ParseOBJ(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	m.Name = Name(path)
	return m, nil
}

// faceVertex holds the zero based position, texture and normal indices of a face corner,
// -1 when absent
type faceVertex struct {
	v, vt, vn int
}

type objParser struct {
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3

	model  *Model
	unique map[faceVertex]uint32
}

// ParseOBJ reads v, vt, vn and f statements. Polygons are fan triangulated, negative
// indices count back from the last element defined so far and identical corners share one
// vertex. Texture coordinates are flipped vertically to match Vulkan's image origin.
// Statements other than these are ignored.
func ParseOBJ(r io.Reader) (*Model, error) {
	p := &objParser{model: &Model{}, unique: map[faceVertex]uint32{}}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.statement(fields); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.model.Indices) == 0 {
		return nil, errors.New("no faces")
	}
	return p.model, nil
}

func (p *objParser) statement(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, mgl32.Vec2{v[0], 1 - v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "f":
		return p.face(fields[1:])
	}
	return nil
}

func (p *objParser) face(tokens []string) error {
	if len(tokens) < 3 {
		return errors.Errorf("face has %d vertices", len(tokens))
	}
	corners := make([]uint32, len(tokens))
	for i, tok := range tokens {
		fv, err := p.faceVertex(tok)
		if err != nil {
			return err
		}
		corners[i] = p.index(fv)
	}
	for i := 1; i+1 < len(corners); i++ {
		p.model.Indices = append(p.model.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// faceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn"
func (p *objParser) faceVertex(tok string) (faceVertex, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return faceVertex{}, errors.Errorf("malformed face vertex %q", tok)
	}
	fv := faceVertex{v: -1, vt: -1, vn: -1}
	var err error
	if fv.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return fv, errors.Wrap(err, "position")
	}
	if fv.v < 0 {
		return fv, errors.Errorf("face vertex %q has no position", tok)
	}
	if len(parts) > 1 {
		if fv.vt, err = resolveIndex(parts[1], len(p.uvs)); err != nil {
			return fv, errors.Wrap(err, "texture coordinate")
		}
	}
	if len(parts) > 2 {
		if fv.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return fv, errors.Wrap(err, "normal")
		}
	}
	return fv, nil
}

// index returns the vertex index of fv, adding the vertex on first use
func (p *objParser) index(fv faceVertex) uint32 {
	if i, ok := p.unique[fv]; ok {
		return i
	}
	v := Vertex{Pos: p.positions[fv.v]}
	if fv.vt >= 0 {
		v.TexCoord = p.uvs[fv.vt]
	}
	if fv.vn >= 0 {
		v.Normal = p.normals[fv.vn]
	}
	i := uint32(len(p.model.Vertices))
	p.model.Vertices = append(p.model.Vertices, v)
	p.unique[fv] = i
	return i
}

// resolveIndex turns a one based or negative OBJ index into a zero based one. An empty
// string resolves to -1.
func resolveIndex(s string, count int) (int, error) {
	if s == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	i := n - 1
	if n < 0 {
		i = count + n
	}
	if n == 0 || i < 0 || i >= count {
		return -1, errors.Errorf("index %d out of range for %d elements", n, count)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, errors.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
