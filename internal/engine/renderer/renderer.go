// Package renderer draws eye meshes with OpenGL.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/Faultbox/stereoview/internal/engine/camera"
	"github.com/Faultbox/stereoview/internal/engine/projection"
	"github.com/Faultbox/stereoview/internal/engine/scene"
	"github.com/Faultbox/stereoview/internal/engine/shader"
	"github.com/Faultbox/stereoview/internal/engine/texture"
	"github.com/Faultbox/stereoview/internal/logger"
)

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aTexCoord;

uniform mat4 uMVP;

out vec2 vTexCoord;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vTexCoord = aTexCoord;
}
`

const fragmentShaderSource = `
#version 410 core

in vec2 vTexCoord;
out vec4 FragColor;

uniform sampler2D uTexture;

void main() {
	FragColor = texture(uTexture, vTexCoord);
}
`

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// MaxTextureSize caps the reported hardware limit when positive.
	MaxTextureSize int
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	program *shader.Program
	locMVP  int32
	locTex  int32

	maxTextureSize int

	meshes   *cache[*projection.Geometry, gpuMesh]
	textures *cache[uuid.UUID, uint32]
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	var maxSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)

	r := &Renderer{
		config:         cfg,
		maxTextureSize: int(maxSize),
		meshes:         newCache[*projection.Geometry](deleteMesh),
		textures:       newCache[uuid.UUID](deleteTexture),
	}
	if cfg.MaxTextureSize > 0 && (r.maxTextureSize == 0 || cfg.MaxTextureSize < r.maxTextureSize) {
		r.maxTextureSize = cfg.MaxTextureSize
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int("max_texture_size", r.maxTextureSize),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0, 0, 0, 1)

	var err error
	r.program, err = shader.Compile(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.locMVP = r.program.MustUniform("uMVP")
	r.locTex = r.program.MustUniform("uTexture")

	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// MaxTextureSize returns the largest texture dimension the GPU accepts.
func (r *Renderer) MaxTextureSize() int {
	return r.maxTextureSize
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

func (r *Renderer) aspect() float32 {
	if r.config.Height <= 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Clear clears the framebuffer for a frame with nothing to draw.
func (r *Renderer) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Render draws the visible meshes of s from cam. GPU objects for meshes no longer
// attached to s are released.
func (r *Renderer) Render(s *scene.Scene, cam *camera.LookCamera) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.program.Use()
	gl.Uniform1i(r.locTex, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	viewProj := cam.ProjectionMatrix(r.aspect()).Mul(cam.ViewMatrix())

	for _, m := range s.Children() {
		if m.Geometry == nil || m.Material.Texture == nil {
			continue
		}
		mesh, err := r.meshes.get(m.Geometry, func() (gpuMesh, error) { return uploadMesh(m.Geometry) })
		if err != nil {
			logger.Warn("mesh upload failed", zap.String("mesh", m.Name), zap.Error(err))
			continue
		}
		tex := m.Material.Texture
		texID, err := r.textures.get(tex.ID, func() (uint32, error) { return r.uploadTexture(tex) })
		if err != nil {
			logger.Warn("texture upload failed", zap.String("mesh", m.Name), zap.Error(err))
			continue
		}
		if !m.Visible {
			continue
		}

		if m.Material.DoubleSided {
			gl.Disable(gl.CULL_FACE)
		} else {
			gl.Enable(gl.CULL_FACE)
		}
		mvp := viewProj.Mul(m.ModelMatrix())
		gl.UniformMatrix4fv(r.locMVP, 1, false, mvp.Ptr())
		gl.BindTexture(gl.TEXTURE_2D, texID)
		gl.BindVertexArray(mesh.vao)
		gl.DrawElements(gl.TRIANGLES, mesh.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)

	if n := r.textures.sweep(); n > 0 {
		logger.Debug("released textures", zap.Int("count", n))
	}
	r.meshes.sweep()
}

// ReadPixels reads the framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	r.meshes.clear()
	r.textures.clear()
	if r.program != nil {
		r.program.Delete()
	}
}

func uploadMesh(g *projection.Geometry) (gpuMesh, error) {
	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return gpuMesh{}, fmt.Errorf("empty %s geometry", g.Shape)
	}
	var m gpuMesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	vertexSize := int(unsafe.Sizeof(projection.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(g.Vertices)*vertexSize, unsafe.Pointer(&g.Vertices[0]), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)
	// TexCoord
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)

	m.indexCount = int32(len(g.Indices))
	gl.BindVertexArray(0)
	return m, nil
}

// uploadTexture uploads tex at its logical size. Texture coordinates put v=1 at the top
// of the image, so rows are flipped to a bottom-left origin.
func (r *Renderer) uploadTexture(tex *texture.Texture) (uint32, error) {
	if tex.Image == nil || tex.Width <= 0 || tex.Height <= 0 {
		return 0, fmt.Errorf("texture %s has no pixels", tex.ID)
	}
	img := tex.Image
	if b := img.Bounds(); b.Dx() != tex.Width || b.Dy() != tex.Height {
		img = resize.Resize(uint(tex.Width), uint(tex.Height), img, resize.Bilinear)
	}
	rgba := texture.FlipVertical(texture.ToRGBA(img))

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(tex.Width), int32(tex.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, pixPtr(rgba))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	logger.Debug("texture uploaded",
		zap.String("id", tex.ID.String()),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
	)
	return id, nil
}

func pixPtr(img *image.RGBA) unsafe.Pointer {
	return unsafe.Pointer(&img.Pix[0])
}

func deleteMesh(m gpuMesh) {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

func deleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}
