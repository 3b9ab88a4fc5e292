// Package importer loads triangle meshes and their texture references from
// glTF 2.0 files (.gltf and .glb).
//
// Only mesh data is read. Node hierarchies, skins, animations and cameras
// are ignored, and each primitive becomes one ImportedMesh in document
// order.
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/geom"
)

// ErrModelImport is returned when a file cannot be read or holds no
// triangle geometry.
var ErrModelImport = errors.New("importer: model import failed")

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	g3d.RegisterLoggerHook(func(l *slog.Logger) { loggerPtr.Store(l) })
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// TextureRef points at a texture image, either on disk or embedded in the
// model file.
type TextureRef struct {
	// Name is the image URI or name, for cache keys and logs.
	Name string
	// Path is the image file resolved against the model's directory.
	// Empty for embedded images.
	Path string
	// Data holds embedded image bytes (data URI or GLB buffer view).
	Data []byte
}

// Key identifies the image for caching.
func (r TextureRef) Key() string {
	if r.Path != "" {
		return r.Path
	}
	return "embedded:" + r.Name
}

// ImportedMesh is one triangle primitive.
type ImportedMesh struct {
	Name string
	// Mesh is always LayoutPosition3NormalTexCoord and indexed. Missing
	// normals are generated, missing texture coordinates are zero.
	Mesh geom.Mesh
	// Textures are in binding order, diffuse first.
	Textures []TextureRef
}

// Import reads the glTF or GLB file at path.
func Import(path string) ([]ImportedMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelImport, path, err)
	}
	meshes, err := FromDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slogger().Info("importer: model loaded", "path", path, "meshes", len(meshes))
	return meshes, nil
}

// FromDocument converts an already decoded document. Relative image URIs
// are resolved against dir.
func FromDocument(doc *gltf.Document, dir string) ([]ImportedMesh, error) {
	var out []ImportedMesh
	for mi, m := range doc.Meshes {
		if m == nil {
			continue
		}
		for pi, prim := range m.Primitives {
			if prim == nil {
				continue
			}
			if prim.Mode != gltf.PrimitiveTriangles {
				slogger().Warn("importer: skipping non-triangle primitive", "mesh", m.Name, "primitive", pi, "mode", prim.Mode)
				continue
			}
			mesh, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("%w: mesh %d primitive %d: %w", ErrModelImport, mi, pi, err)
			}
			out = append(out, ImportedMesh{
				Name:     m.Name,
				Mesh:     mesh,
				Textures: materialTextures(doc, prim.Material, dir),
			})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no triangle meshes", ErrModelImport)
	}
	return out, nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (geom.Mesh, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return geom.Mesh{}, errors.New("no POSITION attribute")
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return geom.Mesh{}, fmt.Errorf("positions: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return geom.Mesh{}, fmt.Errorf("positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		if acr, err = accessor(doc, *prim.Indices); err != nil {
			return geom.Mesh{}, fmt.Errorf("indices: %w", err)
		}
		if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return geom.Mesh{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err = accessor(doc, idx); err != nil {
			return geom.Mesh{}, fmt.Errorf("normals: %w", err)
		}
		if normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
			return geom.Mesh{}, fmt.Errorf("normals: %w", err)
		}
	}
	if len(normals) != len(positions) {
		normals = smoothNormals(positions, indices)
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = accessor(doc, idx); err != nil {
			return geom.Mesh{}, fmt.Errorf("texcoords: %w", err)
		}
		if uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			return geom.Mesh{}, fmt.Errorf("texcoords: %w", err)
		}
	}

	verts := make([]float32, 0, len(positions)*8)
	for i, p := range positions {
		n := normals[i]
		var uv [2]float32
		if i < len(uvs) {
			// glTF puts v = 0 at the top of the image; textures are
			// uploaded with v = 0 at the bottom.
			uv = [2]float32{uvs[i][0], 1 - uvs[i][1]}
		}
		verts = append(verts, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}

	m := geom.Mesh{Layout: geom.LayoutPosition3NormalTexCoord, Vertices: verts, Indices: indices}
	if err := m.Validate(); err != nil {
		return geom.Mesh{}, err
	}
	return m, nil
}

// accessor returns accessor i after checking that it and the buffer view
// and buffer it reads from exist.
func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", i, len(doc.Accessors))
	}
	acr := doc.Accessors[i]
	if acr == nil {
		return nil, fmt.Errorf("accessor %d is null", i)
	}
	if acr.BufferView != nil {
		if err := checkBufferView(doc, *acr.BufferView); err != nil {
			return nil, fmt.Errorf("accessor %d: %w", i, err)
		}
	}
	return acr, nil
}

func checkBufferView(doc *gltf.Document, i int) error {
	if i < 0 || i >= len(doc.BufferViews) || doc.BufferViews[i] == nil {
		return fmt.Errorf("buffer view %d out of range (%d views)", i, len(doc.BufferViews))
	}
	if b := doc.BufferViews[i].Buffer; b < 0 || b >= len(doc.Buffers) || doc.Buffers[b] == nil {
		return fmt.Errorf("buffer view %d: buffer %d out of range (%d buffers)", i, b, len(doc.Buffers))
	}
	return nil
}

// smoothNormals averages the face normals around each vertex.
func smoothNormals(pos [][3]float32, indices []uint32) [][3]float32 {
	acc := make([]mgl32.Vec3, len(pos))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(max(a, b, c)) >= len(pos) {
			continue
		}
		pa, pb, pc := mgl32.Vec3(pos[a]), mgl32.Vec3(pos[b]), mgl32.Vec3(pos[c])
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	}
	out := make([][3]float32, len(pos))
	for i, n := range acc {
		if n.Len() > 0 {
			out[i] = n.Normalize()
		}
	}
	return out
}

// materialTextures returns the material's diffuse map, its base color
// texture. Core glTF has no specular map.
func materialTextures(doc *gltf.Document, material *int, dir string) []TextureRef {
	if material == nil || *material < 0 || *material >= len(doc.Materials) || doc.Materials[*material] == nil {
		return nil
	}
	mat := doc.Materials[*material]
	var refs []TextureRef
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		if ref, ok := textureRef(doc, pbr.BaseColorTexture.Index, dir); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func textureRef(doc *gltf.Document, texture int, dir string) (TextureRef, bool) {
	if texture < 0 || texture >= len(doc.Textures) {
		return TextureRef{}, false
	}
	if doc.Textures[texture] == nil {
		return TextureRef{}, false
	}
	src := doc.Textures[texture].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) || doc.Images[*src] == nil {
		return TextureRef{}, false
	}
	img := doc.Images[*src]
	ref := TextureRef{Name: img.Name}

	switch {
	case img.BufferView != nil:
		if err := checkBufferView(doc, *img.BufferView); err != nil {
			slogger().Warn("importer: unreadable embedded image", "image", *src, "error", err)
			return TextureRef{}, false
		}
		data, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			slogger().Warn("importer: unreadable embedded image", "image", *src, "error", err)
			return TextureRef{}, false
		}
		ref.Data = data
		if ref.Name == "" {
			ref.Name = fmt.Sprintf("image%d", *src)
		}
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			slogger().Warn("importer: bad data URI", "image", *src, "error", err)
			return TextureRef{}, false
		}
		ref.Data = data
		if ref.Name == "" {
			ref.Name = fmt.Sprintf("image%d", *src)
		}
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		ref.Path = filepath.Join(dir, filepath.FromSlash(uri))
		if ref.Name == "" {
			ref.Name = uri
		}
	default:
		return TextureRef{}, false
	}
	return ref, true
}
