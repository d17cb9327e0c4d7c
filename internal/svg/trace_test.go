package svg_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booomerangs/relay-api/internal/svg"
)

// squareImage draws a black square on a white canvas.
func squareImage(size, inset int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x >= inset && x < size-inset && y >= inset && y < size-inset {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestTraceFindsSquareOutline(t *testing.T) {
	img := squareImage(40, 10)

	points := svg.Trace(img, svg.Threshold)
	require.NotEmpty(t, points)

	// Every boundary point sits on the square's edge rows or columns.
	for _, p := range points {
		onEdge := p.X == 10 || p.X == 29 || p.Y == 10 || p.Y == 29
		assert.True(t, onEdge, "point (%d,%d) is not on the outline", p.X, p.Y)
	}
}

func TestTraceBlankImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.White)
		}
	}

	assert.Empty(t, svg.Trace(img, svg.Threshold))
}

func TestRenderDocumentStructure(t *testing.T) {
	img := squareImage(60, 15)
	points := svg.Trace(img, svg.Threshold)

	doc := svg.Render("http://example.com/pic.png", img, points)

	assert.True(t, strings.HasPrefix(doc, "<svg "))
	assert.True(t, strings.HasSuffix(doc, "</svg>"))
	assert.Contains(t, doc, `filter id="posterize"`)
	assert.Contains(t, doc, `href="http://example.com/pic.png"`)
	assert.Contains(t, doc, ">BOOOMERANGS</text>")
	assert.Contains(t, doc, `width="60"`)

	// The trace is thinned: at most every tenth point of the first
	// thousand becomes a circle.
	circles := strings.Count(doc, "<circle")
	assert.LessOrEqual(t, circles, 100)
	assert.Greater(t, circles, 0)
}

func TestConvertFetchesAndRenders(t *testing.T) {
	img := squareImage(30, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		require.NoError(t, png.Encode(w, img))
	}))
	defer srv.Close()

	doc, err := svg.Convert(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, doc, srv.URL)
	assert.Contains(t, doc, "BOOOMERANGS")
}

func TestConvertRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := svg.Convert(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestConvertRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	_, err := svg.Convert(context.Background(), srv.URL)
	assert.Error(t, err)
}
