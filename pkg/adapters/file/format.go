package file

import (
	"fmt"
	"reflect"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// documentFile is the on-disk shape of a network. Nested networks reuse it.
type documentFile struct {
	Inputs   []domain.NodeID `mapstructure:"inputs"`
	Outputs  []outputEntry   `mapstructure:"outputs"`
	Disabled []domain.NodeID `mapstructure:"disabled"`
	Nodes    []nodeEntry     `mapstructure:"nodes"`
}

type outputEntry struct {
	Node  domain.NodeID `mapstructure:"node"`
	Index int           `mapstructure:"index"`
}

type nodeEntry struct {
	ID       domain.NodeID `mapstructure:"id"`
	Name     string        `mapstructure:"name"`
	Type     string        `mapstructure:"type"`
	Position domain.IVec2  `mapstructure:"position"`
	Inputs   []inputEntry  `mapstructure:"inputs"`
	Network  *documentFile `mapstructure:"network"`
}

// inputEntry is one of: a literal (value, kind, exposed), a link (link,
// output, lambda) or a boundary marker.
type inputEntry struct {
	Value    any            `mapstructure:"value"`
	Kind     string         `mapstructure:"kind"`
	Exposed  bool           `mapstructure:"exposed"`
	Link     *domain.NodeID `mapstructure:"link"`
	Output   int            `mapstructure:"output"`
	Lambda   bool           `mapstructure:"lambda"`
	Boundary bool           `mapstructure:"boundary"`
}

var inputEntryType = reflect.TypeOf(inputEntry{})

// scalarInput lets a bare value stand for a hidden literal input.
func scalarInput(from, to reflect.Type, data any) (any, error) {
	if to != inputEntryType || from.Kind() == reflect.Map {
		return data, nil
	}
	return map[string]any{"value": data}, nil
}

func decode(raw any, target any, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       scalarInput,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

func (f *documentFile) network() (*domain.NodeNetwork, error) {
	n := domain.NewNetwork()
	n.Inputs = f.Inputs
	n.Disabled = f.Disabled
	for _, out := range f.Outputs {
		n.Outputs = append(n.Outputs, domain.NodeOutput{Node: out.Node, Index: out.Index})
	}
	for _, entry := range f.Nodes {
		if _, exists := n.Nodes[entry.ID]; exists {
			return nil, fmt.Errorf("%w: node %d", domain.ErrNodeExists, entry.ID)
		}
		node, err := entry.node()
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", entry.ID, err)
		}
		n.Nodes[entry.ID] = node
	}
	return n, nil
}

func (e nodeEntry) node() (*domain.DocumentNode, error) {
	node := &domain.DocumentNode{Name: e.Name, Position: e.Position}
	switch {
	case e.Network != nil && e.Type != "":
		return nil, fmt.Errorf("%w: both type and network given", domain.ErrInvalidPayload)
	case e.Network != nil:
		nested, err := e.Network.network()
		if err != nil {
			return nil, err
		}
		node.Implementation = domain.Nested{Network: nested}
		if node.Name == "" {
			node.Name = "Network"
		}
	case e.Type != "":
		node.Implementation = domain.Primitive{Type: e.Type}
		if node.Name == "" {
			node.Name = e.Type
		}
	default:
		return nil, fmt.Errorf("%w: missing type", domain.ErrInvalidPayload)
	}

	for i, in := range e.Inputs {
		input, err := in.input()
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		node.Inputs = append(node.Inputs, input)
	}
	return node, nil
}

func (e inputEntry) input() (domain.NodeInput, error) {
	switch {
	case e.Boundary:
		return domain.Boundary{}, nil
	case e.Link != nil:
		return domain.Link{Target: *e.Link, OutputIndex: e.Output, Lambda: e.Lambda}, nil
	}
	v, err := literal(domain.ValueKind(e.Kind), e.Value)
	if err != nil {
		return nil, err
	}
	return domain.Value(v, e.Exposed), nil
}

// literal decodes raw as a value of kind. Without a kind, scalars are inferred.
func literal(kind domain.ValueKind, raw any) (domain.TaggedValue, error) {
	if kind == "" {
		switch x := raw.(type) {
		case nil:
			return domain.None{}, nil
		case bool:
			return domain.Bool(x), nil
		case string:
			return domain.String(x), nil
		case int, int64, uint64, float32, float64:
			kind = domain.KindNumber
		default:
			return nil, fmt.Errorf("%w: value of type %T needs a kind", domain.ErrInvalidPayload, raw)
		}
	}

	var (
		v   domain.TaggedValue
		err error
	)
	switch kind {
	case domain.KindNone:
		return domain.None{}, nil
	case domain.KindNumber:
		v, err = as[domain.Number](raw)
	case domain.KindUint:
		v, err = as[domain.Uint](raw)
	case domain.KindBool:
		v, err = as[domain.Bool](raw)
	case domain.KindString:
		v, err = as[domain.String](raw)
	case domain.KindVec2:
		v, err = as[domain.Vec2](raw)
	case domain.KindIVec2:
		v, err = as[domain.IVec2](raw)
	case domain.KindColor:
		v, err = as[domain.Color](raw)
	case domain.KindAffine:
		v, err = as[domain.Affine](raw)
	case domain.KindImage:
		v, err = as[domain.Image](raw)
	case domain.KindImageFrame:
		v, err = as[domain.ImageFrame](raw)
	case domain.KindVectorData:
		v, err = as[domain.VectorData](raw)
	case domain.KindArtboard:
		v, err = as[domain.Artboard](raw)
	default:
		return nil, fmt.Errorf("%w: kind %q cannot be written as a literal", domain.ErrInvalidPayload, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s value: %v", domain.ErrInvalidPayload, kind, err)
	}
	return v, nil
}

func as[T domain.TaggedValue](raw any) (domain.TaggedValue, error) {
	var v T
	if err := decode(raw, &v, true); err != nil {
		return nil, err
	}
	return v, nil
}
