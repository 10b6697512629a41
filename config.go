package osge

import (
	"os"

	"golang.org/x/exp/slog"
)

// Config holds the settings a Renderer is created with
type Config struct {
	// Title of the window and the Vulkan application name
	Title string
	// Width and Height are the initial window size in screen coordinates
	Width  int
	Height int

	// ShaderDir is scanned for compiled .vert and .frag SPIR-V files
	ShaderDir string
	// TextureDir is scanned for .png, .jpg and .jpeg files
	TextureDir string
	// ModelDir is scanned for .obj files
	ModelDir string

	// Validation enables VK_LAYER_KHRONOS_validation and the debug report callback
	Validation bool

	// MaxSamples is the ceiling applied to the device's maximum usable MSAA sample count
	MaxSamples int

	// TextureIndex selects which bound texture the draw samples from
	TextureIndex int

	// MaxTextureSize bounds the larger side of a loaded texture, 0 means unbounded
	MaxTextureSize int

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Title:          "osge",
		Width:          1280,
		Height:         720,
		ShaderDir:      "shaders",
		TextureDir:     "textures",
		ModelDir:       "models",
		MaxSamples:     8,
		MaxTextureSize: 4096,
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		c.Logger = NewLogger(slog.LevelInfo)
	}
	return c.Logger
}

// NewLogger creates the text logger used when no logger has been configured
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
