package http

import (
	"reflect"
	"testing"
)

func TestParseCookie(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []Param
		ok     bool
	}{
		{"single", "hello=world", []Param{{"hello", "world"}}, true},
		{"multiple", "hello=world; test=abc", []Param{{"hello", "world"}, {"test", "abc"}}, true},
		{"encoded", "name=John%20Doe; plus=a+b", []Param{{"name", "John Doe"}, {"plus", "a b"}}, true},
		{"value with equals", "token=a=b", []Param{{"token", "a=b"}}, true},
		{"skips bare names", "flag; k=v", []Param{{"k", "v"}}, true},
		{"empty", "", []Param{}, true},
		{"comma joined", "a=1, b=2", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCookie(tt.header)
			if ok != tt.ok {
				t.Fatalf("ParseCookie(%q) ok = %v, want %v", tt.header, ok, tt.ok)
			}
			if !ok {
				return
			}
			if !reflect.DeepEqual(got.All(), tt.want) {
				t.Errorf("ParseCookie(%q) = %v, want %v", tt.header, got.All(), tt.want)
			}
		})
	}
}
