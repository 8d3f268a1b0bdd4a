package registry

import (
	"errors"
	"fmt"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// Args are the resolved inputs of one primitive invocation.
// The accessors perform checked conversions and never panic.
type Args struct {
	// Type is the node type name, used in error messages.
	Type   string
	Values []domain.TaggedValue
}

// NewArgs wraps values for a call of the named type.
func NewArgs(typeName string, values ...domain.TaggedValue) Args {
	return Args{Type: typeName, Values: values}
}

// Len returns the number of inputs.
func (a Args) Len() int {
	return len(a.Values)
}

// Value returns input i, or None when i is out of range.
func (a Args) Value(i int) domain.TaggedValue {
	if i < 0 || i >= len(a.Values) || a.Values[i] == nil {
		return domain.None{}
	}
	return a.Values[i]
}

func get[T domain.TaggedValue](a Args, i int) (T, error) {
	v, err := domain.As[T](a.Value(i))
	if err != nil {
		var mismatch *domain.TypeMismatchError
		if errors.As(err, &mismatch) {
			mismatch.Context = fmt.Sprintf("%s input %d", a.Type, i)
		}
		return v, err
	}
	return v, nil
}

func (a Args) mismatch(i int, expected domain.ValueKind) error {
	return &domain.TypeMismatchError{
		Expected: expected,
		Got:      a.Value(i).Kind(),
		Context:  fmt.Sprintf("%s input %d", a.Type, i),
	}
}

// Number returns input i as a float. Uint values are widened.
func (a Args) Number(i int) (float64, error) {
	switch v := a.Value(i).(type) {
	case domain.Number:
		return float64(v), nil
	case domain.Uint:
		return float64(v), nil
	default:
		return 0, a.mismatch(i, domain.KindNumber)
	}
}

// Bool returns input i as a bool.
func (a Args) Bool(i int) (bool, error) {
	v, err := get[domain.Bool](a, i)
	return bool(v), err
}

// String returns input i as a string.
func (a Args) String(i int) (string, error) {
	v, err := get[domain.String](a, i)
	return string(v), err
}

// Vec2 returns input i as a float vector. Integer vectors are widened.
func (a Args) Vec2(i int) (domain.Vec2, error) {
	switch v := a.Value(i).(type) {
	case domain.Vec2:
		return v, nil
	case domain.IVec2:
		return domain.Vec2{X: float64(v.X), Y: float64(v.Y)}, nil
	default:
		return domain.Vec2{}, a.mismatch(i, domain.KindVec2)
	}
}

// IVec2 returns input i as an integer vector.
func (a Args) IVec2(i int) (domain.IVec2, error) {
	return get[domain.IVec2](a, i)
}

// Color returns input i as a color.
func (a Args) Color(i int) (domain.Color, error) {
	return get[domain.Color](a, i)
}

// Frame returns input i as an image frame. Bare images get the identity transform.
func (a Args) Frame(i int) (domain.ImageFrame, error) {
	switch v := a.Value(i).(type) {
	case domain.ImageFrame:
		return v, nil
	case domain.Image:
		return domain.ImageFrame{Image: v, Transform: domain.IdentityAffine()}, nil
	default:
		return domain.ImageFrame{}, a.mismatch(i, domain.KindImageFrame)
	}
}

// Vector returns input i as vector data.
func (a Args) Vector(i int) (domain.VectorData, error) {
	return get[domain.VectorData](a, i)
}

// Graphic returns input i as a graphic group. Any other graphical value is
// wrapped as the single element of a new group.
func (a Args) Graphic(i int) (domain.GraphicGroup, error) {
	switch v := a.Value(i).(type) {
	case domain.GraphicGroup:
		return v, nil
	case domain.None:
		return domain.GraphicGroup{Transform: domain.IdentityAffine()}, nil
	case domain.ImageFrame, domain.VectorData, domain.Artboard:
		return domain.GraphicGroup{Elements: []domain.TaggedValue{v}, Transform: domain.IdentityAffine()}, nil
	default:
		return domain.GraphicGroup{}, a.mismatch(i, domain.KindGraphicGroup)
	}
}

// Lambda returns input i as a callable function.
func (a Args) Lambda(i int) (domain.Func, error) {
	f, err := get[domain.Func](a, i)
	if err != nil {
		return f, err
	}
	if f.Call == nil {
		return f, fmt.Errorf("%s input %d: function %q has no body", a.Type, i, f.Name)
	}
	return f, nil
}
