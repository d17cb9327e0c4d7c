// Package svg converts raster images into decorated SVG documents: the
// original image embedded with a posterize filter, a crude boundary trace
// drawn as accent dots, and a brand watermark.
package svg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// Threshold separates ink from background on the grayscale image.
	Threshold = 128

	// maxTracePoints caps how many boundary dots end up in the SVG.
	maxTracePoints = 1000

	// traceStride keeps every n-th boundary point.
	traceStride = 10

	fetchTimeout = 10 * time.Second
)

// Point is a boundary pixel found by the trace.
type Point struct {
	X, Y int
}

// Fetch downloads an image by URL and decodes it.
func Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Trace finds boundary pixels of the thresholded image: dark pixels with
// at least one light 4-neighbour. It is a rough outline, not a potrace
// replacement.
func Trace(img image.Image, threshold uint8) []Point {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	dark := make([]bool, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Grayscale NRGBA has R==G==B.
			px := gray.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			dark[y*width+x] = px.R < threshold
		}
	}

	var points []Point
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			if !dark[y*width+x] {
				continue
			}
			if !dark[(y-1)*width+x] || !dark[(y+1)*width+x] ||
				!dark[y*width+x-1] || !dark[y*width+x+1] {
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	return points
}

// Render produces the SVG document for an already-decoded image. The
// image itself is referenced by URL, not inlined, matching what browsers
// can load directly.
func Render(imageURL string, img image.Image, points []Point) string {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", width, height, width, height)
	b.WriteString("<defs>\n")
	b.WriteString("  <filter id=\"posterize\">\n")
	b.WriteString("    <feComponentTransfer>\n")
	b.WriteString("      <feFuncR type=\"discrete\" tableValues=\"0 0.25 0.5 0.75 1\" />\n")
	b.WriteString("      <feFuncG type=\"discrete\" tableValues=\"0 0.25 0.5 0.75 1\" />\n")
	b.WriteString("      <feFuncB type=\"discrete\" tableValues=\"0 0.25 0.5 0.75 1\" />\n")
	b.WriteString("    </feComponentTransfer>\n")
	b.WriteString("  </filter>\n")
	b.WriteString("</defs>\n")

	fmt.Fprintf(&b, `<image href="%s" width="%d" height="%d" filter="url(#posterize)" />`+"\n", imageURL, width, height)

	b.WriteString(`<g fill="none" stroke="rgba(255, 75, 43, 0.5)" stroke-width="1">` + "\n")
	limit := maxTracePoints
	if len(points) < limit {
		limit = len(points)
	}
	for i := 0; i < limit; i++ {
		if i%traceStride != 0 {
			continue
		}
		fmt.Fprintf(&b, `  <circle cx="%d" cy="%d" r="1" />`+"\n", points[i].X, points[i].Y)
	}
	b.WriteString("</g>\n")

	fmt.Fprintf(&b, `<rect x="0" y="%d" width="%d" height="50" fill="rgba(0,0,0,0.7)" />`+"\n", height-50, width)
	fmt.Fprintf(&b, `<text x="%d" y="%d" font-family="Arial" font-size="24" text-anchor="middle" fill="#FF4B2B" font-weight="bold">BOOOMERANGS</text>`+"\n", width/2, height-20)
	b.WriteString("</svg>")

	return b.String()
}

// Convert fetches, traces and renders in one call.
func Convert(ctx context.Context, imageURL string) (string, error) {
	img, err := Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}
	return Render(imageURL, img, Trace(img, Threshold)), nil
}
