package pdef

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdef/pdef-go/generic"
)

// ResponseStatus tags an RPC envelope.
type ResponseStatus string

const (
	// StatusOK wraps a method result.
	StatusOK ResponseStatus = "OK"

	// StatusException wraps a declared application exception.
	StatusException ResponseStatus = "EXCEPTION"
)

// RpcResponse is the envelope of a successful transport response.
// Result holds a generic value.
type RpcResponse struct {
	Status ResponseStatus
	Result any
}

// Codec encodes RPC envelopes to response bodies and back.
type Codec interface {
	ContentType() string
	Encode(resp *RpcResponse) ([]byte, error)
	Decode(data []byte) (*RpcResponse, error)
}

// JSON is the default codec. Envelopes are written as
// {"status": "OK", "result": ...}.
var JSON Codec = jsonCodec{}

var errMalformedEnvelope = errors.New("pdef: malformed response envelope")

type jsonCodec struct{}

func (jsonCodec) ContentType() string { return JSONContentType }

func (jsonCodec) Encode(resp *RpcResponse) ([]byte, error) {
	envelope := generic.NewFields()
	envelope.Set("status", string(resp.Status))
	envelope.Set("result", resp.Result)
	text, err := generic.FormatText(envelope)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

func (jsonCodec) Decode(data []byte) (*RpcResponse, error) {
	v, err := generic.ParseText(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedEnvelope, err)
	}
	envelope, ok := v.(*generic.Fields)
	if !ok {
		return nil, errMalformedEnvelope
	}

	raw, _ := envelope.Get("status")
	status, _ := raw.(string)
	result, _ := envelope.Get("result")

	switch ResponseStatus(strings.ToUpper(status)) {
	case StatusOK:
		return &RpcResponse{Status: StatusOK, Result: result}, nil
	case StatusException:
		return &RpcResponse{Status: StatusException, Result: result}, nil
	}
	return nil, fmt.Errorf("%w: unknown status %q", errMalformedEnvelope, status)
}
