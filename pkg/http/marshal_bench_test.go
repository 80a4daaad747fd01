package http

import (
	"strconv"
	"testing"
)

func BenchmarkMarshal_SimpleRequest(b *testing.B) {
	req, err := NewRequest("GET", MustURI("http://example.com/api/users"), []Field{
		{Name: "Accept", Values: []string{"application/json"}},
		{Name: "User-Agent", Values: []string{"shape-httpmsg/1.0"}},
	}, nil, "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Marshal(req)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal_RequestWithBody(b *testing.B) {
	body := NewMemoryStream(`{"name":"John Doe","email":"john@example.com","age":30}`)
	req, err := NewRequest("POST", MustURI("http://example.com/api/users"), []Field{
		{Name: "Content-Type", Values: []string{"application/json"}},
	}, body, "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Marshal(req)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal_SimpleResponse(b *testing.B) {
	resp, err := NewResponse(200, []Field{
		{Name: "Content-Type", Values: []string{"text/plain"}},
	}, NewMemoryStream("Hello, World!"), "", "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Marshal(resp)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal_LargeHeaders(b *testing.B) {
	fields := make([]Field, 30)
	for i := range fields {
		fields[i] = Field{Name: "X-Header-" + strconv.Itoa(i), Values: []string{"value-" + strconv.Itoa(i)}}
	}
	req, err := NewRequest("GET", MustURI("http://example.com/"), fields, nil, "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Marshal(req)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHeaders_With(b *testing.B) {
	req, err := NewRequest("GET", MustURI("http://example.com/"), nil, nil, "")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := req.WithHeader("X-Request-Id", "abc"); err != nil {
			b.Fatal(err)
		}
	}
}
