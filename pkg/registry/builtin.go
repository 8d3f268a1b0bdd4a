package registry

import (
	"context"
	"fmt"
	"math"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// Categories used by the built-in library.
const (
	CategoryGeneral    = "General"
	CategoryValue      = "Value"
	CategoryMath       = "Math"
	CategoryRaster     = "Raster"
	CategoryVector     = "Vector"
	CategoryStructural = "Structural"
	CategoryFunctional = "Functional"
)

// Built-in type names referenced outside this package.
const (
	TypeIdentity       = "Identity"
	TypeInput          = "Input"
	TypeOutput         = "Output"
	TypeNumber         = "Number"
	TypeImage          = "Image"
	TypeExposure       = "Exposure"
	TypeInvert         = "Invert"
	TypeMapImage       = "Map Image"
	TypeInvertExposure = "Invert Exposure"
)

// Builtin returns a registry holding the standard node library.
func Builtin() *Registry {
	r := NewRegistry()
	for _, t := range BuiltinTypes() {
		r.types[t.Name] = t
	}
	return r
}

func general(name string) InputSlot {
	return InputSlot{Name: name, DataType: domain.DataTypeGeneral, Default: domain.Value(domain.None{}, true)}
}

func number(name string, v float64, exposed bool) InputSlot {
	return InputSlot{Name: name, DataType: domain.DataTypeNumber, Default: domain.Value(domain.Number(v), exposed)}
}

func raster(name string) InputSlot {
	empty := domain.ImageFrame{Transform: domain.IdentityAffine()}
	return InputSlot{Name: name, DataType: domain.DataTypeRaster, Default: domain.Value(empty, true)}
}

func out(name string, dt domain.DataType) []OutputSlot {
	return []OutputSlot{{Name: name, DataType: dt}}
}

func one(v domain.TaggedValue) ([]domain.TaggedValue, error) {
	return []domain.TaggedValue{v}, nil
}

func identity(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	return one(args.Value(0))
}

// BuiltinTypes returns fresh descriptors for every built-in node type.
func BuiltinTypes() []NodeType {
	return []NodeType{
		{
			Name: TypeIdentity, Category: CategoryGeneral,
			Inputs: []InputSlot{general("In")}, Outputs: out("Out", domain.DataTypeGeneral),
			Operation: identity,
		},
		{
			Name: TypeInput, Category: CategoryGeneral,
			Inputs:    []InputSlot{{Name: "In", DataType: domain.DataTypeGeneral, Default: domain.Boundary{}}},
			Outputs:   out("Out", domain.DataTypeGeneral),
			Operation: identity,
		},
		{
			Name: TypeOutput, Category: CategoryGeneral,
			Inputs: []InputSlot{general("Output")}, Outputs: out("Out", domain.DataTypeGeneral),
			Operation: identity,
		},
		{
			Name: TypeNumber, Category: CategoryValue,
			Inputs: []InputSlot{number("Value", 0, false)}, Outputs: out("Number", domain.DataTypeNumber),
			Operation: func(_ context.Context, args Args) ([]domain.TaggedValue, error) {
				v, err := args.Number(0)
				if err != nil {
					return nil, err
				}
				return one(domain.Number(v))
			},
		},
		{
			Name: "Boolean", Category: CategoryValue,
			Inputs:    []InputSlot{{Name: "Value", DataType: domain.DataTypeBoolean, Default: domain.Value(domain.Bool(false), false)}},
			Outputs:   out("Bool", domain.DataTypeBoolean),
			Operation: identity,
		},
		{
			Name: "Text", Category: CategoryValue,
			Inputs:    []InputSlot{{Name: "Text", DataType: domain.DataTypeNumber, Default: domain.Value(domain.String(""), false)}},
			Outputs:   out("Text", domain.DataTypeNumber),
			Operation: identity,
		},
		{
			Name: "Vec2", Category: CategoryValue,
			Inputs:  []InputSlot{number("X", 0, false), number("Y", 0, false)},
			Outputs: out("Vec2", domain.DataTypeVec2),
			Operation: func(_ context.Context, args Args) ([]domain.TaggedValue, error) {
				x, err := args.Number(0)
				if err != nil {
					return nil, err
				}
				y, err := args.Number(1)
				if err != nil {
					return nil, err
				}
				return one(domain.Vec2{X: x, Y: y})
			},
		},
		{
			Name: "Color", Category: CategoryValue,
			Inputs: []InputSlot{
				number("R", 0, false), number("G", 0, false), number("B", 0, false), number("A", 1, false),
			},
			Outputs: out("Color", domain.DataTypeColor),
			Operation: func(_ context.Context, args Args) ([]domain.TaggedValue, error) {
				var c [4]float32
				for i := range c {
					v, err := args.Number(i)
					if err != nil {
						return nil, err
					}
					c[i] = float32(v)
				}
				return one(domain.Color{R: c[0], G: c[1], B: c[2], A: c[3]}.Clamp())
			},
		},
		{
			Name: "Add", Category: CategoryMath,
			Inputs:    []InputSlot{number("A", 0, true), number("B", 0, true)},
			Outputs:   out("Sum", domain.DataTypeNumber),
			Operation: binary(func(a, b float64) float64 { return a + b }),
		},
		{
			Name: "Multiply", Category: CategoryMath,
			Inputs:    []InputSlot{number("A", 0, true), number("B", 1, true)},
			Outputs:   out("Product", domain.DataTypeNumber),
			Operation: binary(func(a, b float64) float64 { return a * b }),
		},
		{
			Name: "Transform", Category: CategoryStructural,
			Inputs: []InputSlot{
				general("Data"),
				{Name: "Translation", DataType: domain.DataTypeVec2, Default: domain.Value(domain.Vec2{}, false)},
				number("Rotation", 0, false),
				{Name: "Scale", DataType: domain.DataTypeVec2, Default: domain.Value(domain.Vec2{X: 1, Y: 1}, false)},
			},
			Outputs:   out("Data", domain.DataTypeGeneral),
			Operation: transform,
		},
		{
			Name: TypeImage, Category: CategoryRaster,
			Inputs: []InputSlot{
				number("Width", 64, false), number("Height", 64, false),
				{Name: "Fill", DataType: domain.DataTypeColor, Default: domain.Value(domain.Color{A: 1}, false)},
			},
			Outputs:   out("Image", domain.DataTypeRaster),
			Operation: solidImage,
		},
		{
			Name: TypeExposure, Category: CategoryRaster,
			Inputs:    []InputSlot{raster("Image"), number("Exposure", 0, false)},
			Outputs:   out("Image", domain.DataTypeRaster),
			Operation: exposure,
		},
		{
			Name: TypeInvert, Category: CategoryRaster,
			Inputs:  []InputSlot{raster("Image")},
			Outputs: out("Image", domain.DataTypeRaster),
			Operation: pixelFilter(func(c domain.Color) domain.Color {
				return domain.Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B, A: c.A}
			}),
		},
		{
			Name: "Grayscale", Category: CategoryRaster,
			Inputs:  []InputSlot{raster("Image")},
			Outputs: out("Image", domain.DataTypeRaster),
			Operation: pixelFilter(func(c domain.Color) domain.Color {
				l := c.Luminance()
				return domain.Color{R: l, G: l, B: l, A: c.A}
			}),
		},
		{
			Name: "Brightness/Contrast", Category: CategoryRaster,
			Inputs:    []InputSlot{raster("Image"), number("Brightness", 0, false), number("Contrast", 0, false)},
			Outputs:   out("Image", domain.DataTypeRaster),
			Operation: brightnessContrast,
		},
		{
			Name: "Blend", Category: CategoryRaster,
			Inputs:    []InputSlot{raster("Background"), raster("Foreground"), number("Opacity", 0.5, false)},
			Outputs:   out("Image", domain.DataTypeRaster),
			Operation: blend,
		},
		{
			Name: "Vector Rectangle", Category: CategoryVector,
			Inputs:    []InputSlot{{Name: "Size", DataType: domain.DataTypeVec2, Default: domain.Value(domain.Vec2{X: 100, Y: 100}, false)}},
			Outputs:   out("Vector", domain.DataTypeVector),
			Operation: rectangle,
		},
		{
			Name: "Vector Circle", Category: CategoryVector,
			Inputs:    []InputSlot{number("Radius", 50, false)},
			Outputs:   out("Vector", domain.DataTypeVector),
			Operation: circle,
		},
		{
			Name: "Group", Category: CategoryStructural,
			Inputs:    []InputSlot{general("First"), general("Second")},
			Outputs:   out("Group", domain.DataTypeGraphic),
			Operation: group,
		},
		{
			Name: "Artboard", Category: CategoryStructural,
			Inputs: []InputSlot{
				{Name: "Graphic", DataType: domain.DataTypeGraphic, Default: domain.Value(domain.None{}, true)},
				{Name: "Location", DataType: domain.DataTypeVec2, Default: domain.Value(domain.IVec2{}, false)},
				{Name: "Dimensions", DataType: domain.DataTypeVec2, Default: domain.Value(domain.IVec2{X: 1920, Y: 1080}, false)},
				{Name: "Background", DataType: domain.DataTypeColor, Default: domain.Value(domain.Color{R: 1, G: 1, B: 1, A: 1}, false)},
			},
			Outputs:   out("Artboard", domain.DataTypeArtboard),
			Operation: artboard,
		},
		{
			Name: TypeMapImage, Category: CategoryFunctional,
			Inputs:    []InputSlot{raster("Image"), general("Function")},
			Outputs:   out("Image", domain.DataTypeRaster),
			Operation: mapImage,
		},
		{
			Name: "Apply", Category: CategoryFunctional,
			Inputs:  []InputSlot{general("Function"), general("Argument")},
			Outputs: out("Result", domain.DataTypeGeneral),
			Operation: func(ctx context.Context, args Args) ([]domain.TaggedValue, error) {
				f, err := args.Lambda(0)
				if err != nil {
					return nil, err
				}
				v, err := f.Call(ctx, args.Value(1))
				if err != nil {
					return nil, err
				}
				return one(v)
			},
		},
		{
			Name: TypeInvertExposure, Category: CategoryRaster,
			Inputs:  []InputSlot{raster("Image"), number("Exposure", 0, true)},
			Outputs: out("Image", domain.DataTypeRaster),
			Network: invertExposureNetwork,
		},
	}
}

// invertExposureNetwork: Input(0) -> Exposure(1) -> Invert(2). The exposure
// amount is a second boundary input on node 1.
func invertExposureNetwork() *domain.NodeNetwork {
	n := domain.NewNetwork()
	n.Nodes[0] = &domain.DocumentNode{
		Name:           TypeInput,
		Implementation: domain.Primitive{Type: TypeInput},
		Inputs:         []domain.NodeInput{domain.Boundary{}},
	}
	n.Nodes[1] = &domain.DocumentNode{
		Name:           TypeExposure,
		Implementation: domain.Primitive{Type: TypeExposure},
		Inputs:         []domain.NodeInput{domain.LinkTo(0, 0), domain.Boundary{}},
		Position:       domain.IVec2{X: 8},
	}
	n.Nodes[2] = &domain.DocumentNode{
		Name:           TypeInvert,
		Implementation: domain.Primitive{Type: TypeInvert},
		Inputs:         []domain.NodeInput{domain.LinkTo(1, 0)},
		Position:       domain.IVec2{X: 16},
	}
	n.Inputs = []domain.NodeID{0, 1}
	n.Outputs = []domain.NodeOutput{{Node: 2}}
	return n
}

func binary(f func(a, b float64) float64) Operation {
	return func(_ context.Context, args Args) ([]domain.TaggedValue, error) {
		a, err := args.Number(0)
		if err != nil {
			return nil, err
		}
		b, err := args.Number(1)
		if err != nil {
			return nil, err
		}
		return one(domain.Number(f(a, b)))
	}
}

// pixelFilter applies f to every pixel of a raster, or to a single color so
// the node can serve as a per-pixel function for Map Image.
func pixelFilter(f func(domain.Color) domain.Color) Operation {
	return func(_ context.Context, args Args) ([]domain.TaggedValue, error) {
		if c, ok := args.Value(0).(domain.Color); ok {
			return one(f(c))
		}
		frame, err := args.Frame(0)
		if err != nil {
			return nil, err
		}
		frame.Image = frame.Image.MapPixels(f)
		return one(frame)
	}
}

func exposure(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	frame, err := args.Frame(0)
	if err != nil {
		return nil, err
	}
	stops, err := args.Number(1)
	if err != nil {
		return nil, err
	}
	gain := float32(math.Pow(2, stops))
	frame.Image = frame.Image.MapPixels(func(c domain.Color) domain.Color {
		return domain.Color{R: c.R * gain, G: c.G * gain, B: c.B * gain, A: c.A}.Clamp()
	})
	return one(frame)
}

func brightnessContrast(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	frame, err := args.Frame(0)
	if err != nil {
		return nil, err
	}
	brightness, err := args.Number(1)
	if err != nil {
		return nil, err
	}
	contrast, err := args.Number(2)
	if err != nil {
		return nil, err
	}
	b, k := float32(brightness/100), float32(1+contrast/100)
	adjust := func(v float32) float32 { return (v-0.5)*k + 0.5 + b }
	frame.Image = frame.Image.MapPixels(func(c domain.Color) domain.Color {
		return domain.Color{R: adjust(c.R), G: adjust(c.G), B: adjust(c.B), A: c.A}.Clamp()
	})
	return one(frame)
}

func blend(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	bg, err := args.Frame(0)
	if err != nil {
		return nil, err
	}
	fg, err := args.Frame(1)
	if err != nil {
		return nil, err
	}
	opacity, err := args.Number(2)
	if err != nil {
		return nil, err
	}
	if bg.Image.Width != fg.Image.Width || bg.Image.Height != fg.Image.Height {
		return nil, fmt.Errorf("blend: size mismatch %dx%d vs %dx%d",
			bg.Image.Width, bg.Image.Height, fg.Image.Width, fg.Image.Height)
	}
	t := float32(opacity)
	lerp := func(a, b float32) float32 { return a + (b-a)*t }
	result := bg
	result.Image = domain.Image{Width: bg.Image.Width, Height: bg.Image.Height, Pixels: make([]domain.Color, len(bg.Image.Pixels))}
	for i, a := range bg.Image.Pixels {
		b := fg.Image.Pixels[i]
		result.Image.Pixels[i] = domain.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
	}
	return one(result)
}

func solidImage(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	w, err := args.Number(0)
	if err != nil {
		return nil, err
	}
	h, err := args.Number(1)
	if err != nil {
		return nil, err
	}
	fill, err := args.Color(2)
	if err != nil {
		return nil, err
	}
	img := domain.NewImage(int(w), int(h), fill)
	return one(domain.ImageFrame{Image: img, Transform: domain.IdentityAffine()})
}

func mapImage(ctx context.Context, args Args) ([]domain.TaggedValue, error) {
	frame, err := args.Frame(0)
	if err != nil {
		return nil, err
	}
	f, err := args.Lambda(1)
	if err != nil {
		return nil, err
	}
	pixels := make([]domain.Color, len(frame.Image.Pixels))
	for i, p := range frame.Image.Pixels {
		v, err := f.Call(ctx, p)
		if err != nil {
			return nil, err
		}
		c, err := domain.As[domain.Color](v)
		if err != nil {
			return nil, fmt.Errorf("%s: function %q result: %w", args.Type, f.Name, err)
		}
		pixels[i] = c
	}
	frame.Image = domain.Image{Width: frame.Image.Width, Height: frame.Image.Height, Pixels: pixels}
	return one(frame)
}

func rectangle(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	size, err := args.Vec2(0)
	if err != nil {
		return nil, err
	}
	path := domain.Subpath{Closed: true, Anchors: []domain.Vec2{
		{X: 0, Y: 0}, {X: size.X, Y: 0}, {X: size.X, Y: size.Y}, {X: 0, Y: size.Y},
	}}
	return one(domain.VectorData{Subpaths: []domain.Subpath{path}, Transform: domain.IdentityAffine()})
}

const circleSegments = 16

func circle(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	r, err := args.Number(0)
	if err != nil {
		return nil, err
	}
	path := domain.Subpath{Closed: true, Anchors: make([]domain.Vec2, circleSegments)}
	for i := range path.Anchors {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		path.Anchors[i] = domain.Vec2{X: r * cos, Y: r * sin}
	}
	return one(domain.VectorData{Subpaths: []domain.Subpath{path}, Transform: domain.IdentityAffine()})
}

func group(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	g := domain.GraphicGroup{Transform: domain.IdentityAffine()}
	for i := 0; i < args.Len(); i++ {
		if _, empty := args.Value(i).(domain.None); empty {
			continue
		}
		g.Elements = append(g.Elements, args.Value(i))
	}
	return one(g)
}

func artboard(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	graphic, err := args.Graphic(0)
	if err != nil {
		return nil, err
	}
	location, err := args.IVec2(1)
	if err != nil {
		return nil, err
	}
	dimensions, err := args.IVec2(2)
	if err != nil {
		return nil, err
	}
	background, err := args.Color(3)
	if err != nil {
		return nil, err
	}
	return one(domain.Artboard{Location: location, Dimensions: dimensions, Background: background, Graphic: graphic})
}

func transform(_ context.Context, args Args) ([]domain.TaggedValue, error) {
	translation, err := args.Vec2(1)
	if err != nil {
		return nil, err
	}
	angle, err := args.Number(2)
	if err != nil {
		return nil, err
	}
	scale, err := args.Vec2(3)
	if err != nil {
		return nil, err
	}
	m := domain.ScaleRotateTranslate(scale, angle, translation)

	switch v := args.Value(0).(type) {
	case domain.ImageFrame:
		v.Transform = m.Mul(v.Transform)
		return one(v)
	case domain.VectorData:
		v.Transform = m.Mul(v.Transform)
		return one(v)
	case domain.GraphicGroup:
		v.Transform = m.Mul(v.Transform)
		return one(v)
	case domain.Affine:
		return one(m.Mul(v))
	case domain.Vec2:
		return one(m.Apply(v))
	default:
		return nil, &domain.TypeMismatchError{
			Expected: domain.KindGraphicGroup,
			Got:      v.Kind(),
			Context:  fmt.Sprintf("%s input 0", args.Type),
		}
	}
}
