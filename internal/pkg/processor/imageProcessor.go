package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/buckket/go-blurhash"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	MaxBannerWidth  = 1920
	MaxBannerHeight = 1080
	WebPQuality     = 85

	placeholderSize       = 32
	placeholderComponents = 4
)

type ProcessedImage struct {
	Data   []byte
	Width  int
	Height int
}

type ImageProcessor interface {
	// Transcode fits the image inside the banner bounds without enlarging it
	// and re-encodes it as lossy WebP.
	Transcode(data []byte) (*ProcessedImage, error)
	// Placeholder computes a blurhash from a small downscale of the image.
	Placeholder(data []byte) (string, error)
}

type imageProcessor struct {
	maxWidth  int
	maxHeight int
	quality   float32
}

func NewImageProcessor() ImageProcessor {
	return &imageProcessor{
		maxWidth:  MaxBannerWidth,
		maxHeight: MaxBannerHeight,
		quality:   WebPQuality,
	}
}

func (p *imageProcessor) Transcode(data []byte) (*ProcessedImage, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	fitted := imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, fitted, &webp.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}

	return &ProcessedImage{
		Data:   buf.Bytes(),
		Width:  fitted.Bounds().Dx(),
		Height: fitted.Bounds().Dy(),
	}, nil
}

func (p *imageProcessor) Placeholder(data []byte) (string, error) {
	img, err := decode(data)
	if err != nil {
		return "", err
	}

	small := imaging.Fit(img, placeholderSize, placeholderSize, imaging.Lanczos)

	hash, err := blurhash.Encode(placeholderComponents, placeholderComponents, small)
	if err != nil {
		return "", fmt.Errorf("failed to encode blurhash: %w", err)
	}
	return hash, nil
}

func decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
