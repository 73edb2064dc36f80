package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ProcessedImage holds the two encoded JPEG variants produced for one
// route point photo.
type ProcessedImage struct {
	Full        []byte
	Thumbnail   []byte
	FullWidth   int
	FullHeight  int
	ThumbWidth  int
	ThumbHeight int
}

// Config drives the resize/compress pipeline, sourced from the
// photo_max_width / photo_quality / thumbnail_width settings.
type Config struct {
	MaxWidth       int
	Quality        int
	ThumbnailWidth int
}

// NewProcessor creates an image processor bound to the given config.
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Processor decodes, resizes, and re-encodes photo payloads.
type Processor struct {
	config Config
}

// Process decodes the raw image bytes and produces a width-bounded full
// variant plus a thumbnail, both as JPEG. If the decoded image is
// narrower than MaxWidth/ThumbnailWidth it is re-encoded without
// upscaling; aspect ratio is always preserved.
func (p *Processor) Process(r io.Reader) (*ProcessedImage, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	full := img
	if img.Bounds().Dx() > p.config.MaxWidth {
		full = imaging.Resize(img, p.config.MaxWidth, 0, imaging.Lanczos)
	}

	fullBytes, err := p.encodeJPEG(full)
	if err != nil {
		return nil, fmt.Errorf("encode full image: %w", err)
	}

	thumb := img
	if img.Bounds().Dx() > p.config.ThumbnailWidth {
		thumb = imaging.Resize(img, p.config.ThumbnailWidth, 0, imaging.Lanczos)
	}

	thumbBytes, err := p.encodeJPEG(thumb)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return &ProcessedImage{
		Full:        fullBytes,
		Thumbnail:   thumbBytes,
		FullWidth:   full.Bounds().Dx(),
		FullHeight:  full.Bounds().Dy(),
		ThumbWidth:  thumb.Bounds().Dx(),
		ThumbHeight: thumb.Bounds().Dy(),
	}, nil
}

func (p *Processor) encodeJPEG(img image.Image) ([]byte, error) {
	quality := p.config.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
