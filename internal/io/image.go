package ioutils

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// ImageService provides image processing operations for cover art.
//
// ImageService is used to turn a video thumbnail (typically 16:9) into
// square cover art suitable for embedding in an audio file.
//
// Example usage:
//
//	svc := NewImageService()
//	if err := svc.NormalizeSquare(ctx, "/images/Song.jpg", 1400); err != nil {
//	    // image is unusable, embed without artwork
//	}
type ImageService struct {
	jpegQuality int
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{jpegQuality: 90}
}

// CenterSquare returns the largest square centered within bounds.
//
// The side of the square is min(width, height). When the excess is odd,
// the extra pixel is left on the right/bottom.
//
// Example:
//
//	CenterSquare(image.Rect(0, 0, 1280, 720)) // (280,0)-(1000,720)
func CenterSquare(bounds image.Rectangle) image.Rectangle {
	side := min(bounds.Dx(), bounds.Dy())
	x0 := bounds.Min.X + (bounds.Dx()-side)/2
	y0 := bounds.Min.Y + (bounds.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}

// NormalizeSquare center-crops the image at path to a square, scales it to
// size x size and overwrites the file in the format it was decoded from.
//
// Parameters:
//   - ctx: Context for cancellation (currently unused)
//   - path: Image file to normalize in place (JPEG or PNG)
//   - size: Side of the output square in pixels
//
// The Catmull-Rom algorithm is used for high-quality scaling. Applying
// NormalizeSquare to an already normalized image leaves its dimensions
// unchanged (the crop is the full image).
//
// Returns an error if the file cannot be read, decoded or re-encoded.
func (s *ImageService) NormalizeSquare(ctx context.Context, path string, size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid target size %d", size)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	crop := CenterSquare(img.Bounds())
	if crop.Empty() {
		return fmt.Errorf("decode %s: empty image", path)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.jpegQuality})
	case "png":
		err = png.Encode(&buf, dst)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Dimensions decodes only the header of the image at path.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
