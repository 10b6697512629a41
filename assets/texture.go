package assets

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// TextureExts are the image files the texture loader decodes
var TextureExts = []string{".png", ".jpg", ".jpeg"}

// Texture is a decoded image as tightly packed 8 bit RGBA rows
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// LoadTexture decodes the image at path. See DecodeTexture for maxSize.
func LoadTexture(path string, maxSize int) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	t, err := DecodeTexture(bytes.NewReader(data), maxSize)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	t.Name = Name(path)
	return t, nil
}

// DecodeTexture decodes a PNG or JPEG image into RGBA. When maxSize is positive and the
// larger side of the image exceeds it, the image is scaled down with Catmull-Rom
// filtering, keeping its aspect ratio.
func DecodeTexture(r io.Reader, maxSize int) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("image is empty")
	}

	w, h := fitSize(b.Dx(), b.Dy(), maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	return &Texture{Width: w, Height: h, Pixels: dst.Pix}, nil
}

// fitSize scales w by h down so that neither side exceeds limit. Sides never drop below 1.
func fitSize(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
