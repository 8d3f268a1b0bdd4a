package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register(NodeType{Name: ""})
	assert.ErrorIs(t, err, ErrInvalidNodeType)

	err = r.Register(NodeType{Name: "Both", Operation: identity, Network: domain.NewNetwork})
	assert.ErrorIs(t, err, ErrInvalidNodeType)

	err = r.Register(NodeType{Name: "NoDefault", Operation: identity, Inputs: []InputSlot{{Name: "In"}}})
	assert.ErrorIs(t, err, ErrInvalidNodeType)

	require.NoError(t, r.Register(NodeType{Name: "Echo", Operation: identity, Inputs: []InputSlot{general("In")}}))
	assert.True(t, r.Has("Echo"))

	_, err = r.Resolve("Missing")
	assert.True(t, errors.Is(err, domain.ErrUnknownNodeType))
}

func TestBuiltin_AllValid(t *testing.T) {
	r := NewRegistry()
	for _, nt := range BuiltinTypes() {
		assert.NoError(t, r.Register(nt), nt.Name)
		assert.NotEmpty(t, nt.Outputs, nt.Name)
	}
	assert.Len(t, Builtin().Types(), len(BuiltinTypes()))
}

func TestRegistry_Types_Sorted(t *testing.T) {
	types := Builtin().Types()
	for i := 1; i < len(types); i++ {
		prev, cur := types[i-1], types[i]
		if prev.Category == cur.Category {
			assert.Less(t, prev.Name, cur.Name)
		} else {
			assert.Less(t, prev.Category, cur.Category)
		}
	}
}

func TestRegistry_NewNode(t *testing.T) {
	r := Builtin()

	node, err := r.NewNode(TypeExposure, domain.IVec2{X: 4, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.Primitive{Type: TypeExposure}, node.Implementation)
	assert.Equal(t, domain.IVec2{X: 4, Y: 2}, node.Position)
	require.Len(t, node.Inputs, 2)
	assert.Equal(t, domain.Value(domain.Number(0), false), node.Inputs[1])

	composite, err := r.NewNode(TypeInvertExposure, domain.IVec2{})
	require.NoError(t, err)
	require.NotNil(t, composite.Network())
	assert.Len(t, composite.Network().Nodes, 3)

	other, err := r.NewNode(TypeInvertExposure, domain.IVec2{})
	require.NoError(t, err)
	assert.NotSame(t, composite.Network(), other.Network(), "each composite node owns its network")

	_, err = r.NewNode("Nope", domain.IVec2{})
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
}

func TestRegistry_DefaultInput(t *testing.T) {
	r := Builtin()
	node, err := r.NewNode("Multiply", domain.IVec2{})
	require.NoError(t, err)

	def, ok := r.DefaultInput(node, 1)
	require.True(t, ok)
	assert.Equal(t, domain.Value(domain.Number(1), true), def)

	_, ok = r.DefaultInput(node, 5)
	assert.False(t, ok)

	unknown := &domain.DocumentNode{Implementation: domain.Primitive{Type: "Ghost"}}
	_, ok = r.DefaultInput(unknown, 0)
	assert.False(t, ok)
}

func TestArgs_CheckedAccessors(t *testing.T) {
	args := NewArgs("Test", domain.Number(2), domain.String("x"), domain.IVec2{X: 1, Y: 2}, domain.NewImage(1, 1, domain.Color{}))

	n, err := args.Number(0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, n)

	_, err = args.Number(1)
	var mismatch *domain.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Test input 1", mismatch.Context)
	assert.Equal(t, domain.KindString, mismatch.Got)

	v, err := args.Vec2(2)
	require.NoError(t, err)
	assert.Equal(t, domain.Vec2{X: 1, Y: 2}, v)

	frame, err := args.Frame(3)
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityAffine(), frame.Transform)

	_, err = args.Lambda(0)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	assert.Equal(t, domain.None{}, args.Value(99))
	_, err = args.Color(99)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}

func call(t *testing.T, name string, values ...domain.TaggedValue) domain.TaggedValue {
	t.Helper()
	nt, err := Builtin().Resolve(name)
	require.NoError(t, err)
	outputs, err := nt.Operation(context.Background(), NewArgs(name, values...))
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	return outputs[0]
}

func TestBuiltin_Operations(t *testing.T) {
	gray := domain.Color{R: 0.25, G: 0.25, B: 0.25, A: 1}
	frame := domain.ImageFrame{Image: domain.NewImage(2, 2, gray), Transform: domain.IdentityAffine()}

	t.Run("Add", func(t *testing.T) {
		assert.Equal(t, domain.Number(5), call(t, "Add", domain.Number(2), domain.Number(3)))
	})

	t.Run("Exposure doubles per stop", func(t *testing.T) {
		got := call(t, TypeExposure, frame, domain.Number(1)).(domain.ImageFrame)
		assert.InDelta(t, 0.5, got.Image.Pixels[0].R, 1e-6)
		assert.Equal(t, float32(1), got.Image.Pixels[0].A)
	})

	t.Run("Invert", func(t *testing.T) {
		got := call(t, TypeInvert, frame).(domain.ImageFrame)
		assert.InDelta(t, 0.75, got.Image.Pixels[3].G, 1e-6)
	})

	t.Run("Image", func(t *testing.T) {
		got := call(t, TypeImage, domain.Number(3), domain.Number(2), gray).(domain.ImageFrame)
		assert.Equal(t, 3, got.Image.Width)
		assert.Len(t, got.Image.Pixels, 6)
	})

	t.Run("Group skips empty inputs", func(t *testing.T) {
		got := call(t, "Group", domain.None{}, frame).(domain.GraphicGroup)
		assert.Len(t, got.Elements, 1)
	})

	t.Run("Transform translates vector data", func(t *testing.T) {
		rect := call(t, "Vector Rectangle", domain.Vec2{X: 1, Y: 1})
		got := call(t, "Transform", rect, domain.Vec2{X: 10}, domain.Number(0), domain.Vec2{X: 1, Y: 1}).(domain.VectorData)
		assert.Equal(t, domain.Vec2{X: 10}, got.Transform.Translation)
	})

	t.Run("Map Image applies the function per pixel", func(t *testing.T) {
		calls := 0
		f := domain.Func{Name: "red", Call: func(_ context.Context, arg domain.TaggedValue) (domain.TaggedValue, error) {
			calls++
			return domain.Color{R: 1, A: 1}, nil
		}}
		got := call(t, TypeMapImage, frame, f).(domain.ImageFrame)
		assert.Equal(t, 4, calls)
		assert.Equal(t, domain.Color{R: 1, A: 1}, got.Image.Pixels[2])
	})
}

func TestBuiltin_TypeMismatch(t *testing.T) {
	nt, err := Builtin().Resolve(TypeExposure)
	require.NoError(t, err)

	_, err = nt.Operation(context.Background(), NewArgs(TypeExposure, domain.Bool(true), domain.Number(1)))
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
}
