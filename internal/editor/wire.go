package editor

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// Requests and responses travel as {"request": name, "params": {...}} and
// {"response": name, "data": {...}}.

type requestEnvelope struct {
	Request string          `json:"request"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type responseEnvelope struct {
	Response string   `json:"response"`
	Data     Response `json:"data,omitempty"`
}

var requestDecoders = map[string]func(json.RawMessage) (Request, error){
	Init{}.Name():                   decodeAs[Init],
	CreateNode{}.Name():             decodeAs[CreateNode],
	InsertNode{}.Name():             decodeAs[InsertNode],
	DeleteNode{}.Name():             decodeAs[DeleteNode],
	DeleteNodes{}.Name():            decodeAs[DeleteNodes],
	DeleteSelectedNodes{}.Name():    decodeAs[DeleteSelectedNodes],
	ConnectNodesByLink{}.Name():     decodeAs[ConnectNodesByLink],
	DisconnectNodes{}.Name():        decodeAs[DisconnectNodes],
	ExposeInput{}.Name():            decodeAs[ExposeInput],
	SetInputValue{}.Name():          decodeAs[SetInputValue],
	SetNodeInput{}.Name():           decodeAs[SetNodeInput],
	MoveSelectedNodes{}.Name():      decodeAs[MoveSelectedNodes],
	ShiftNode{}.Name():              decodeAs[ShiftNode],
	ToggleHidden{}.Name():           decodeAs[ToggleHidden],
	TogglePreview{}.Name():          decodeAs[TogglePreview],
	Copy{}.Name():                   decodeAs[Copy],
	Cut{}.Name():                    decodeAs[Cut],
	PasteNodes{}.Name():             decodeAs[PasteNodes],
	DuplicateSelectedNodes{}.Name(): decodeAs[DuplicateSelectedNodes],
	SelectNodes{}.Name():            decodeAs[SelectNodes],
	EnterNestedNetwork{}.Name():     decodeAs[EnterNestedNetwork],
	ExitNestedNetwork{}.Name():      decodeAs[ExitNestedNetwork],
	SendGraph{}.Name():              decodeAs[SendGraph],
}

// RequestNames lists the requests accepted by DecodeRequest. The *Impl
// follow-ups are internal and not listed.
func RequestNames() []string {
	names := make([]string, 0, len(requestDecoders))
	for name := range requestDecoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DecodeRequest decodes one request envelope.
func DecodeRequest(data []byte) (Request, error) {
	var env requestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return NewRequest(env.Request, env.Params)
}

// NewRequest decodes params as the named request.
func NewRequest(name string, params json.RawMessage) (Request, error) {
	decode, ok := requestDecoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown request %q", domain.ErrInvalidPayload, name)
	}
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	req, err := decode(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidPayload, name, err)
	}
	return req, nil
}

func decodeAs[T Request](params json.RawMessage) (Request, error) {
	var req T
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	return req, nil
}

// EncodeResponse encodes r in its envelope.
func EncodeResponse(r Response) ([]byte, error) {
	return json.Marshal(responseEnvelope{Response: ResponseName(r), Data: r})
}

// ResponseName identifies a response kind.
func ResponseName(r Response) string {
	switch r.(type) {
	case StartTransaction:
		return "StartTransaction"
	case UpdateNodeGraph:
		return "UpdateNodeGraph"
	case UpdateSelection:
		return "UpdateSelection"
	case TriggerTextCopy:
		return "TriggerTextCopy"
	case Rerender:
		return "Rerender"
	case DisplayError:
		return "DisplayError"
	case UpdateNodeTypes:
		return "UpdateNodeTypes"
	default:
		return fmt.Sprintf("%T", r)
	}
}

// UnmarshalJSON decodes the value with its kind tag.
func (r *SetInputValue) UnmarshalJSON(data []byte) error {
	var aux struct {
		Node  domain.NodeID   `json:"node"`
		Index int             `json:"index"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v, err := domain.UnmarshalValue(aux.Value)
	if err != nil {
		return err
	}
	*r = SetInputValue{Node: aux.Node, Index: aux.Index, Value: v}
	return nil
}

// UnmarshalJSON decodes the input with its kind tag.
func (r *SetNodeInput) UnmarshalJSON(data []byte) error {
	var aux struct {
		Node  domain.NodeID   `json:"node"`
		Index int             `json:"index"`
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	in, err := domain.UnmarshalInput(aux.Input)
	if err != nil {
		return err
	}
	*r = SetNodeInput{Node: aux.Node, Index: aux.Index, Input: in}
	return nil
}
