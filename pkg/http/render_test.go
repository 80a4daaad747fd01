package http

import (
	"errors"
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"
)

func TestRender_Request(t *testing.T) {
	req := mustRequest(t, "GET", "http://example.com/api")
	node, err := RequestToNode(req)
	if err != nil {
		t.Fatalf("RequestToNode() error = %v", err)
	}

	data, err := Render(node)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "GET /api HTTP/1.1\r\nHost: example.com\r\n\r\n"
	if string(data) != want {
		t.Errorf("Render() =\n%q\nwant:\n%q", string(data), want)
	}
}

func TestRender_ServerRequest(t *testing.T) {
	s := mustServerRequest(t, "GET", "http://example.com/?q=1", Params{})
	node, err := ServerRequestToNode(s)
	if err != nil {
		t.Fatal(err)
	}

	data, err := Render(node)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "GET /?q=1 HTTP/1.1\r\nHost: example.com\r\n\r\n"
	if string(data) != want {
		t.Errorf("Render() = %q, want %q", string(data), want)
	}
}

func TestRender_ResponseWithBody(t *testing.T) {
	resp, err := NewResponse(404, []Field{{Name: "Content-Type", Values: []string{"text/html"}}},
		NewMemoryStream("<h1>Not Found</h1>"), "", "")
	if err != nil {
		t.Fatal(err)
	}
	node, err := ResponseToNode(resp)
	if err != nil {
		t.Fatal(err)
	}

	data, err := Render(node)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "HTTP/1.1 404 Not Found\r\nContent-Type: text/html\r\nContent-Length: 18\r\n\r\n<h1>Not Found</h1>"
	if string(data) != want {
		t.Errorf("Render() =\n%q\nwant:\n%q", string(data), want)
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name string
		node ast.SchemaNode
	}{
		{"not an object", ast.NewLiteralNode("x", zeroPos)},
		{"missing type", ast.NewObjectNode(map[string]ast.SchemaNode{}, zeroPos)},
		{"type not literal", ast.NewObjectNode(map[string]ast.SchemaNode{
			"type": ast.NewArrayDataNode(nil, zeroPos),
		}, zeroPos)},
		{"unknown type", ast.NewObjectNode(map[string]ast.SchemaNode{
			"type": ast.NewLiteralNode("trailer", zeroPos),
		}, zeroPos)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Render(tt.node); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Render() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
