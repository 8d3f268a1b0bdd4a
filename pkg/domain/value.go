package domain

import (
	"context"
	"math"
)

// ValueKind identifies the concrete variant of a TaggedValue.
type ValueKind string

const (
	KindNone         ValueKind = "none"
	KindNumber       ValueKind = "f64"
	KindUint         ValueKind = "u32"
	KindBool         ValueKind = "bool"
	KindString       ValueKind = "string"
	KindVec2         ValueKind = "dvec2"
	KindIVec2        ValueKind = "ivec2"
	KindColor        ValueKind = "color"
	KindAffine       ValueKind = "daffine2"
	KindImage        ValueKind = "image"
	KindImageFrame   ValueKind = "image_frame"
	KindVectorData   ValueKind = "vector_data"
	KindGraphicGroup ValueKind = "graphic_group"
	KindArtboard     ValueKind = "artboard"
	KindFunc         ValueKind = "function"
)

// TaggedValue is a value carried by a link or stored as a literal input.
// The set of implementations is closed; the marker method keeps it inside this package.
type TaggedValue interface {
	Kind() ValueKind
	isTaggedValue()
}

// None is the empty value.
type None struct{}

// Number is a 64-bit float scalar.
type Number float64

// Uint is an unsigned 32-bit scalar.
type Uint uint32

// Bool is a boolean value.
type Bool bool

// String is a text value.
type String string

// Vec2 is a 2-D vector with float components.
type Vec2 struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// IVec2 is a 2-D vector with integer components. Node positions use it too.
type IVec2 struct {
	X int `json:"x" mapstructure:"x"`
	Y int `json:"y" mapstructure:"y"`
}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R float32 `json:"r" mapstructure:"r"`
	G float32 `json:"g" mapstructure:"g"`
	B float32 `json:"b" mapstructure:"b"`
	A float32 `json:"a" mapstructure:"a"`
}

// Affine is a 2-D affine transform. Matrix holds the columns x_axis and y_axis
// as [x_axis.x, x_axis.y, y_axis.x, y_axis.y].
type Affine struct {
	Matrix      [4]float64 `json:"matrix" mapstructure:"matrix"`
	Translation Vec2       `json:"translation" mapstructure:"translation"`
}

// Image is a raster of Width*Height pixels in row-major order.
type Image struct {
	Width  int     `json:"width" mapstructure:"width"`
	Height int     `json:"height" mapstructure:"height"`
	Pixels []Color `json:"pixels" mapstructure:"pixels"`
}

// ImageFrame is an image placed in document space.
type ImageFrame struct {
	Image     Image  `json:"image" mapstructure:"image"`
	Transform Affine `json:"transform" mapstructure:"transform"`
}

// Subpath is an open or closed polyline through its anchors.
type Subpath struct {
	Anchors []Vec2 `json:"anchors" mapstructure:"anchors"`
	Closed  bool   `json:"closed" mapstructure:"closed"`
}

// VectorData is a set of subpaths sharing one transform.
type VectorData struct {
	Subpaths  []Subpath `json:"subpaths" mapstructure:"subpaths"`
	Transform Affine    `json:"transform" mapstructure:"transform"`
}

// GraphicGroup composes graphical values under a common transform.
type GraphicGroup struct {
	Elements  []TaggedValue
	Transform Affine
}

// Artboard is a bounded, filled region holding a graphic group.
type Artboard struct {
	Location   IVec2        `json:"location" mapstructure:"location"`
	Dimensions IVec2        `json:"dimensions" mapstructure:"dimensions"`
	Background Color        `json:"background" mapstructure:"background"`
	Graphic    GraphicGroup `json:"graphic" mapstructure:"-"`
}

// Func is a runtime-only value wrapping a deferred computation, produced by
// lambda inputs. It cannot be serialized.
type Func struct {
	Name string
	Call func(ctx context.Context, arg TaggedValue) (TaggedValue, error)
}

func (None) Kind() ValueKind         { return KindNone }
func (Number) Kind() ValueKind       { return KindNumber }
func (Uint) Kind() ValueKind         { return KindUint }
func (Bool) Kind() ValueKind         { return KindBool }
func (String) Kind() ValueKind       { return KindString }
func (Vec2) Kind() ValueKind         { return KindVec2 }
func (IVec2) Kind() ValueKind        { return KindIVec2 }
func (Color) Kind() ValueKind        { return KindColor }
func (Affine) Kind() ValueKind       { return KindAffine }
func (Image) Kind() ValueKind        { return KindImage }
func (ImageFrame) Kind() ValueKind   { return KindImageFrame }
func (VectorData) Kind() ValueKind   { return KindVectorData }
func (GraphicGroup) Kind() ValueKind { return KindGraphicGroup }
func (Artboard) Kind() ValueKind     { return KindArtboard }
func (Func) Kind() ValueKind         { return KindFunc }

func (None) isTaggedValue()         {}
func (Number) isTaggedValue()       {}
func (Uint) isTaggedValue()         {}
func (Bool) isTaggedValue()         {}
func (String) isTaggedValue()       {}
func (Vec2) isTaggedValue()         {}
func (IVec2) isTaggedValue()        {}
func (Color) isTaggedValue()        {}
func (Affine) isTaggedValue()       {}
func (Image) isTaggedValue()        {}
func (ImageFrame) isTaggedValue()   {}
func (VectorData) isTaggedValue()   {}
func (GraphicGroup) isTaggedValue() {}
func (Artboard) isTaggedValue()     {}
func (Func) isTaggedValue()         {}

// Add returns the component-wise sum.
func (v IVec2) Add(o IVec2) IVec2 {
	return IVec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Splat returns an IVec2 with both components set to n.
func Splat(n int) IVec2 {
	return IVec2{X: n, Y: n}
}

// IdentityAffine returns the identity transform.
func IdentityAffine() Affine {
	return Affine{Matrix: [4]float64{1, 0, 0, 1}}
}

// TranslationAffine returns a pure translation.
func TranslationAffine(t Vec2) Affine {
	a := IdentityAffine()
	a.Translation = t
	return a
}

// ScaleRotateTranslate builds a transform applying scale, then rotation (radians), then translation.
func ScaleRotateTranslate(scale Vec2, angle float64, translation Vec2) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		Matrix:      [4]float64{cos * scale.X, sin * scale.X, -sin * scale.Y, cos * scale.Y},
		Translation: translation,
	}
}

// Apply transforms a point.
func (a Affine) Apply(p Vec2) Vec2 {
	m := a.Matrix
	return Vec2{
		X: m[0]*p.X + m[2]*p.Y + a.Translation.X,
		Y: m[1]*p.X + m[3]*p.Y + a.Translation.Y,
	}
}

// Mul composes two transforms; the result applies o first, then a.
func (a Affine) Mul(o Affine) Affine {
	m, n := a.Matrix, o.Matrix
	return Affine{
		Matrix: [4]float64{
			m[0]*n[0] + m[2]*n[1],
			m[1]*n[0] + m[3]*n[1],
			m[0]*n[2] + m[2]*n[3],
			m[1]*n[2] + m[3]*n[3],
		},
		Translation: a.Apply(o.Translation),
	}
}

// IsZero reports whether the transform is the zero value (never constructed).
func (a Affine) IsZero() bool {
	return a == Affine{}
}

// NewImage returns a Width*Height image filled with c.
func NewImage(width, height int, c Color) Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	pixels := make([]Color, width*height)
	for i := range pixels {
		pixels[i] = c
	}
	return Image{Width: width, Height: height, Pixels: pixels}
}

// MapPixels returns a copy of img with f applied to every pixel.
func (img Image) MapPixels(f func(Color) Color) Image {
	out := Image{Width: img.Width, Height: img.Height, Pixels: make([]Color, len(img.Pixels))}
	for i, p := range img.Pixels {
		out.Pixels[i] = f(p)
	}
	return out
}

// Luminance returns the Rec. 709 relative luminance of c.
func (c Color) Luminance() float32 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Clamp limits every component to [0, 1].
func (c Color) Clamp() Color {
	clamp := func(v float32) float32 {
		return float32(math.Max(0, math.Min(1, float64(v))))
	}
	return Color{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
