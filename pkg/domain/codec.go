package domain

import (
	"encoding/json"
	"fmt"
)

// The sum types (TaggedValue, NodeInput, Implementation) are encoded as objects
// carrying a "kind" discriminator so clipboard payloads round-trip.

type valueEnvelope struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalValue encodes a TaggedValue with its kind tag.
func MarshalValue(v TaggedValue) ([]byte, error) {
	if v == nil {
		v = None{}
	}
	if _, ok := v.(Func); ok {
		return nil, fmt.Errorf("%w: function values cannot be serialized", ErrInvalidPayload)
	}
	env := valueEnvelope{Kind: v.Kind()}
	if _, ok := v.(None); !ok {
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		env.Value = payload
	}
	return json.Marshal(env)
}

// UnmarshalValue decodes a TaggedValue written by MarshalValue.
func UnmarshalValue(data []byte) (TaggedValue, error) {
	var env valueEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	target, err := zeroValue(env.Kind)
	if err != nil {
		return nil, err
	}
	if env.Kind == KindNone {
		return None{}, nil
	}
	if err := json.Unmarshal(env.Value, target); err != nil {
		return nil, fmt.Errorf("%w: %s value: %v", ErrInvalidPayload, env.Kind, err)
	}
	return deref(target), nil
}

// zeroValue returns a pointer to a fresh value of the given kind.
func zeroValue(kind ValueKind) (any, error) {
	switch kind {
	case KindNone:
		return &None{}, nil
	case KindNumber:
		return new(Number), nil
	case KindUint:
		return new(Uint), nil
	case KindBool:
		return new(Bool), nil
	case KindString:
		return new(String), nil
	case KindVec2:
		return new(Vec2), nil
	case KindIVec2:
		return new(IVec2), nil
	case KindColor:
		return new(Color), nil
	case KindAffine:
		return new(Affine), nil
	case KindImage:
		return new(Image), nil
	case KindImageFrame:
		return new(ImageFrame), nil
	case KindVectorData:
		return new(VectorData), nil
	case KindGraphicGroup:
		return new(GraphicGroup), nil
	case KindArtboard:
		return new(Artboard), nil
	default:
		return nil, fmt.Errorf("%w: unknown value kind %q", ErrInvalidPayload, kind)
	}
}

func deref(p any) TaggedValue {
	switch v := p.(type) {
	case *None:
		return *v
	case *Number:
		return *v
	case *Uint:
		return *v
	case *Bool:
		return *v
	case *String:
		return *v
	case *Vec2:
		return *v
	case *IVec2:
		return *v
	case *Color:
		return *v
	case *Affine:
		return *v
	case *Image:
		return *v
	case *ImageFrame:
		return *v
	case *VectorData:
		return *v
	case *GraphicGroup:
		return *v
	case *Artboard:
		return *v
	}
	return None{}
}

type graphicGroupJSON struct {
	Elements  []json.RawMessage `json:"elements"`
	Transform Affine            `json:"transform"`
}

// MarshalJSON encodes the elements with their kind tags.
func (g GraphicGroup) MarshalJSON() ([]byte, error) {
	out := graphicGroupJSON{Elements: make([]json.RawMessage, 0, len(g.Elements)), Transform: g.Transform}
	for _, element := range g.Elements {
		raw, err := MarshalValue(element)
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes elements written by MarshalJSON.
func (g *GraphicGroup) UnmarshalJSON(data []byte) error {
	var in graphicGroupJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	g.Transform = in.Transform
	g.Elements = make([]TaggedValue, 0, len(in.Elements))
	for _, raw := range in.Elements {
		v, err := UnmarshalValue(raw)
		if err != nil {
			return err
		}
		g.Elements = append(g.Elements, v)
	}
	return nil
}

type inputJSON struct {
	Kind    string          `json:"kind"`
	Value   json.RawMessage `json:"value,omitempty"`
	Exposed bool            `json:"exposed,omitempty"`
	Target  NodeID          `json:"target,omitempty"`
	Output  int             `json:"output,omitempty"`
	Lambda  bool            `json:"lambda,omitempty"`
}

const (
	inputKindLiteral  = "literal"
	inputKindLink     = "link"
	inputKindBoundary = "boundary"
)

// MarshalInput encodes a NodeInput.
func MarshalInput(in NodeInput) ([]byte, error) {
	switch v := in.(type) {
	case Literal:
		raw, err := MarshalValue(v.Value)
		if err != nil {
			return nil, err
		}
		return json.Marshal(inputJSON{Kind: inputKindLiteral, Value: raw, Exposed: v.Exposed})
	case Link:
		return json.Marshal(inputJSON{Kind: inputKindLink, Target: v.Target, Output: v.OutputIndex, Lambda: v.Lambda})
	case Boundary:
		return json.Marshal(inputJSON{Kind: inputKindBoundary})
	default:
		return nil, fmt.Errorf("%w: unsupported input %T", ErrInvalidPayload, in)
	}
}

// UnmarshalInput decodes a NodeInput written by MarshalInput.
func UnmarshalInput(data []byte) (NodeInput, error) {
	var in inputJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	switch in.Kind {
	case inputKindLiteral:
		v, err := UnmarshalValue(in.Value)
		if err != nil {
			return nil, err
		}
		return Literal{Value: v, Exposed: in.Exposed}, nil
	case inputKindLink:
		return Link{Target: in.Target, OutputIndex: in.Output, Lambda: in.Lambda}, nil
	case inputKindBoundary:
		return Boundary{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown input kind %q", ErrInvalidPayload, in.Kind)
	}
}

type nodeJSON struct {
	Name     string            `json:"name"`
	Inputs   []json.RawMessage `json:"inputs"`
	Type     string            `json:"type,omitempty"`
	Network  *NodeNetwork      `json:"network,omitempty"`
	Position IVec2             `json:"position"`
}

// MarshalJSON encodes the node, its inputs and its implementation.
func (n DocumentNode) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Name: n.Name, Position: n.Position, Inputs: make([]json.RawMessage, 0, len(n.Inputs))}
	for _, input := range n.Inputs {
		raw, err := MarshalInput(input)
		if err != nil {
			return nil, err
		}
		out.Inputs = append(out.Inputs, raw)
	}
	switch impl := n.Implementation.(type) {
	case Primitive:
		out.Type = impl.Type
	case Nested:
		out.Network = impl.Network
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node written by MarshalJSON.
func (n *DocumentNode) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	n.Name = in.Name
	n.Position = in.Position
	n.Inputs = make([]NodeInput, 0, len(in.Inputs))
	for _, raw := range in.Inputs {
		input, err := UnmarshalInput(raw)
		if err != nil {
			return err
		}
		n.Inputs = append(n.Inputs, input)
	}
	if in.Network != nil {
		if in.Network.Nodes == nil {
			in.Network.Nodes = make(map[NodeID]*DocumentNode)
		}
		n.Implementation = Nested{Network: in.Network}
	} else {
		n.Implementation = Primitive{Type: in.Type}
	}
	return nil
}
