package runtime

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/google/uuid"
)

const thumbnailSize = 48

// Thumbnail renders a small SVG preview of v. It is a summary, not a faithful
// rendering: rasters show their average color and size, vectors their outline.
func Thumbnail(v domain.TaggedValue) string {
	var body string
	switch x := v.(type) {
	case domain.ImageFrame:
		body = imageBody(x.Image)
	case domain.Image:
		body = imageBody(x)
	case domain.Color:
		body = rect(cssColor(x))
	case domain.VectorData:
		body = vectorBody(x)
	case domain.GraphicGroup:
		body = label(fmt.Sprintf("%d elements", len(x.Elements)))
	case domain.Artboard:
		body = rect(cssColor(x.Background)) + label(fmt.Sprintf("%dx%d", x.Dimensions.X, x.Dimensions.Y))
	default:
		body = label(Describe(v))
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">%s</svg>`, thumbnailSize, thumbnailSize, body)
}

// Describe returns a one-line textual summary of v.
func Describe(v domain.TaggedValue) string {
	switch x := v.(type) {
	case nil, domain.None:
		return "none"
	case domain.Number:
		return strconv.FormatFloat(float64(x), 'g', 6, 64)
	case domain.Uint:
		return strconv.FormatUint(uint64(x), 10)
	case domain.Bool:
		return strconv.FormatBool(bool(x))
	case domain.String:
		return string(x)
	case domain.Vec2:
		return fmt.Sprintf("(%g, %g)", x.X, x.Y)
	case domain.IVec2:
		return fmt.Sprintf("(%d, %d)", x.X, x.Y)
	case domain.Color:
		return cssColor(x)
	case domain.Affine:
		return fmt.Sprintf("affine %v + (%g, %g)", x.Matrix, x.Translation.X, x.Translation.Y)
	case domain.Image:
		return fmt.Sprintf("image %dx%d", x.Width, x.Height)
	case domain.ImageFrame:
		return fmt.Sprintf("image %dx%d", x.Image.Width, x.Image.Height)
	case domain.VectorData:
		return fmt.Sprintf("vector, %d subpaths", len(x.Subpaths))
	case domain.GraphicGroup:
		return fmt.Sprintf("group, %d elements", len(x.Elements))
	case domain.Artboard:
		return fmt.Sprintf("artboard %dx%d at (%d, %d)", x.Dimensions.X, x.Dimensions.Y, x.Location.X, x.Location.Y)
	case domain.Func:
		return "function " + x.Name
	default:
		return string(v.Kind())
	}
}

func imageBody(img domain.Image) string {
	if len(img.Pixels) == 0 {
		return label("empty")
	}
	var sum [4]float64
	for _, p := range img.Pixels {
		sum[0] += float64(p.R)
		sum[1] += float64(p.G)
		sum[2] += float64(p.B)
		sum[3] += float64(p.A)
	}
	n := float64(len(img.Pixels))
	avg := domain.Color{R: float32(sum[0] / n), G: float32(sum[1] / n), B: float32(sum[2] / n), A: float32(sum[3] / n)}
	return rect(cssColor(avg)) + label(fmt.Sprintf("%dx%d", img.Width, img.Height))
}

// vectorBody fits all anchors into the thumbnail, ignoring the transform.
func vectorBody(v domain.VectorData) string {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sp := range v.Subpaths {
		for _, a := range sp.Anchors {
			minX, minY = math.Min(minX, a.X), math.Min(minY, a.Y)
			maxX, maxY = math.Max(maxX, a.X), math.Max(maxY, a.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return label("empty")
	}
	span := math.Max(math.Max(maxX-minX, maxY-minY), 1)
	scale := (thumbnailSize - 4) / span

	var b strings.Builder
	for _, sp := range v.Subpaths {
		for i, a := range sp.Anchors {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&b, "%s%.1f %.1f ", cmd, 2+(a.X-minX)*scale, 2+(a.Y-minY)*scale)
		}
		if sp.Closed && len(sp.Anchors) > 0 {
			b.WriteString("Z ")
		}
	}
	return fmt.Sprintf(`<path d="%s" fill="none" stroke="black"/>`, strings.TrimSpace(b.String()))
}

func rect(fill string) string {
	return fmt.Sprintf(`<rect width="%d" height="%d" fill="%s"/>`, thumbnailSize, thumbnailSize, fill)
}

func label(text string) string {
	if len(text) > 24 {
		text = text[:23] + "…"
	}
	return fmt.Sprintf(`<text x="2" y="%d" font-size="8">%s</text>`, thumbnailSize-4, html.EscapeString(text))
}

func cssColor(c domain.Color) string {
	c = c.Clamp()
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)",
		int(math.Round(float64(c.R)*255)), int(math.Round(float64(c.G)*255)), int(math.Round(float64(c.B)*255)), c.A)
}

// WriteThumbnails stores a thumbnail for every intermediate of res under the
// given document and layer. It returns how many were written.
func WriteThumbnails(ctx context.Context, store ports.ThumbnailStore, document uuid.UUID, layer []uint64, res *Result) (int, error) {
	keys := make([]string, 0, len(res.Intermediates))
	for k := range res.Intermediates {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var errs []error
	written := 0
	for _, k := range keys {
		im := res.Intermediates[k]
		key := ports.ThumbnailKey{Document: document, Layer: layer, Node: im.Path}
		if err := store.Save(ctx, key, Thumbnail(im.Value)); err != nil {
			errs = append(errs, fmt.Errorf("save thumbnail %s: %w", key, err))
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}
