package http

import (
	"github.com/shapestone/shape-core/pkg/ast"
)

// Render converts an AST node back to HTTP wire format bytes.
//
// The node must be an ObjectNode with a "type" property of "request",
// "serverRequest" or "response", as produced by RequestToNode,
// ServerRequestToNode or ResponseToNode.
func Render(node ast.SchemaNode) ([]byte, error) {
	props, err := objectProps("Render", node)
	if err != nil {
		return nil, err
	}

	typeProp, ok := props["type"]
	if !ok {
		return nil, invalidInput("Render", "missing 'type' property")
	}
	typeLit, ok := typeProp.(*ast.LiteralNode)
	if !ok {
		return nil, invalidInput("Render", "'type' is not a literal")
	}
	msgType, ok := typeLit.Value().(string)
	if !ok {
		return nil, invalidInput("Render", "'type' is not a string")
	}

	switch msgType {
	case "request", "serverRequest":
		req, err := NodeToRequest(node)
		if err != nil {
			return nil, err
		}
		return Marshal(req)

	case "response":
		resp, err := NodeToResponse(node)
		if err != nil {
			return nil, err
		}
		return Marshal(resp)

	default:
		return nil, invalidInput("Render", "unknown message type %q", msgType)
	}
}
