// Package imaging decodes vehicle photos and prepares them for the model
// backends: a bounded-size JPEG for vision LLMs and a CHW float tensor for
// the local object detector.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/nfnt/resize"
)

const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// MediaType sniffs the content type of data. Only JPEG and PNG are accepted.
func MediaType(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case MediaTypeJPEG, MediaTypePNG:
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ct)
	}
}

func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Fit returns the image bytes with the longest edge at most maxEdge pixels.
// Images that already fit are returned untouched; larger ones are resized
// and re-encoded as JPEG. maxEdge <= 0 disables resizing.
func Fit(data []byte, maxEdge int) ([]byte, string, error) {
	mediaType, err := MediaType(data)
	if err != nil {
		return nil, "", err
	}
	if maxEdge <= 0 {
		return data, mediaType, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= maxEdge && cfg.Height <= maxEdge {
		return data, mediaType, nil
	}

	img, err := Decode(data)
	if err != nil {
		return nil, "", err
	}

	var resized image.Image
	if cfg.Width >= cfg.Height {
		resized = resize.Resize(uint(maxEdge), 0, img, resize.Lanczos3)
	} else {
		resized = resize.Resize(0, uint(maxEdge), img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), MediaTypeJPEG, nil
}

// Tensor resizes img to size x size and lays it out as normalised RGB planes
// (channel, row, column) in [0, 1].
func Tensor(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			idx := y*width + x
			data[idx] = float32(r) / 65535.0
			data[plane+idx] = float32(g) / 65535.0
			data[2*plane+idx] = float32(b) / 65535.0
		}
	}
	return data
}
