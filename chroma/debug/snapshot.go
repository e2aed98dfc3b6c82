package debug

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/valerio/go-chroma/chroma/display"
	"github.com/valerio/go-chroma/chroma/video"
)

// FrameImage converts a frame to an RGBA image, upscaled by scale with
// nearest neighbour sampling so pixels stay sharp.
func FrameImage(frame *video.FrameBuffer, scale int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for i, pixel := range frame.ToSlice() {
		r, g, b, a := video.RGBA(pixel)
		copy(img.Pix[i*display.RGBABytesPerPixel:], []byte{r, g, b, a})
	}
	if scale <= 1 {
		return img
	}

	scaled := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth*scale, video.FramebufferHeight*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled
}

// EncodePNG writes the frame as a PNG.
func EncodePNG(w io.Writer, frame *video.FrameBuffer, scale int) error {
	if err := png.Encode(w, FrameImage(frame, scale)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNGBytes returns the encoded frame, used for the clipboard.
func PNGBytes(frame *video.FrameBuffer, scale int) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, frame, scale); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveFramePNG writes the frame to path.
func SaveFramePNG(frame *video.FrameBuffer, path string, scale int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	return EncodePNG(file, frame, scale)
}

// TakeSnapshot saves a timestamped PNG in directory, or the working
// directory when it is empty, and returns its path.
func TakeSnapshot(frame *video.FrameBuffer, baseName, directory string, scale int) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame data available for snapshot")
	}
	if baseName == "" {
		baseName = "chroma_snapshot"
	}

	filename := fmt.Sprintf("%s_%s.png", baseName, time.Now().Format("20060102_150405"))
	path := filepath.Join(directory, filename)
	if err := SaveFramePNG(frame, path, scale); err != nil {
		return "", err
	}

	slog.Info("Snapshot saved", "path", path,
		"size", fmt.Sprintf("%dx%d", video.FramebufferWidth*max(scale, 1), video.FramebufferHeight*max(scale, 1)))
	return path, nil
}
