package http10

import (
	"testing"

	"github.com/yourusername/relay/pkg/relay/strbuf"
)

func TestIsHeaderEnd(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"crlf crlf", "GET / HTTP/1.0\r\n\r\n", true},
		{"lf lf", "GET / HTTP/1.0\n\n", true},
		{"crlf lf", "GET / HTTP/1.0\r\n\n", true},
		{"lf crlf", "GET / HTTP/1.0\n\r\n", true},
		{"single line", "GET / HTTP/1.0\r\n", false},
		{"no terminator yet", "GET / HTTP/1.0\r\nHost: x\r\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHeaderEnd([]byte(tt.in)); got != tt.want {
				t.Errorf("IsHeaderEnd(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func mustParse(t *testing.T, raw string) *Header {
	t.Helper()
	h := &Header{}
	n := copy(h.HeaderData[:], raw)
	h.HeaderLen = n
	if err := ParseRequest(h); err != nil {
		t.Fatalf("ParseRequest(%q) error = %v", raw, err)
	}
	return h
}

func TestParseRequestLineGET(t *testing.T) {
	h := mustParse(t, "GET /index.html HTTP/1.0\r\n\r\n")
	if h.Method != MethodGET {
		t.Errorf("Method = %v, want GET", h.Method)
	}
	if got := string(h.URI.Full.Data); got != "/index.html" {
		t.Errorf("URI.Full = %q, want /index.html", got)
	}
	if h.Version != 10 {
		t.Errorf("Version = %d, want 10", h.Version)
	}
	if got := string(h.FirstLine.Data); got != "GET /index.html HTTP/1.0" {
		t.Errorf("FirstLine = %q", got)
	}
}

func TestParseRequestLineMethods(t *testing.T) {
	tests := []struct {
		line string
		want Method
	}{
		{"GET / HTTP/1.0\r\n\r\n", MethodGET},
		{"POST / HTTP/1.0\r\n\r\n", MethodPOST},
		{"HEAD / HTTP/1.0\r\n\r\n", MethodHEAD},
		{"PATCH / HTTP/1.0\r\n\r\n", MethodUnknown},
	}
	for _, tt := range tests {
		h := mustParse(t, tt.line)
		if h.Method != tt.want {
			t.Errorf("ParseRequest(%q).Method = %v, want %v", tt.line, h.Method, tt.want)
		}
	}
}

func TestParseRequestUnsupportedVersion(t *testing.T) {
	h := &Header{}
	raw := "GET / HTTP/2.0\r\n\r\n"
	h.HeaderLen = copy(h.HeaderData[:], raw)
	if err := ParseRequest(h); err != ErrUnsupportedVersion {
		t.Fatalf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestParseRequestURITooLong(t *testing.T) {
	uri := make([]byte, URISizeMax+1)
	for i := range uri {
		uri[i] = 'x'
	}
	raw := "GET /" + string(uri) + " HTTP/1.0\r\n\r\n"
	h := &Header{}
	h.HeaderLen = copy(h.HeaderData[:], raw)
	if err := ParseRequest(h); err != ErrURITooLong {
		t.Fatalf("err = %v, want ErrURITooLong", err)
	}
}

func TestParseRequestMultipleFields(t *testing.T) {
	raw := "GET / HTTP/1.0\r\nHost: example.com\r\nUser-Agent: test-agent\r\nX-Custom: value\r\n\r\n"
	h := mustParse(t, raw)

	if got := string(h.StdFields[HNameHost].Data); got != "example.com" {
		t.Errorf("Host = %q, want example.com", got)
	}
	if got := string(h.StdFields[HNameUserAgent].Data); got != "test-agent" {
		t.Errorf("User-Agent = %q, want test-agent", got)
	}
	if h.ExtraCnt != 1 {
		t.Fatalf("ExtraCnt = %d, want 1", h.ExtraCnt)
	}
	if got := string(h.Extra[0].Name.Data); got != "X-Custom" {
		t.Errorf("Extra[0].Name = %q, want X-Custom", got)
	}
	if got := string(h.Extra[0].Value.Data); got != "value" {
		t.Errorf("Extra[0].Value = %q, want value", got)
	}
}

func TestParseRequestDuplicateStdFieldRejected(t *testing.T) {
	raw := "GET / HTTP/1.0\r\nHost: a\r\nHost: b\r\n\r\n"
	h := &Header{}
	h.HeaderLen = copy(h.HeaderData[:], raw)
	if err := ParseRequest(h); err != ErrDuplicateStdField {
		t.Fatalf("err = %v, want ErrDuplicateStdField", err)
	}
}

func TestParseRequestTooManyExtraFields(t *testing.T) {
	raw := "GET / HTTP/1.0\r\n"
	for i := 0; i < ExtraFieldsMax+1; i++ {
		raw += "X-Field: v\r\n"
	}
	raw += "\r\n"
	h := &Header{}
	n := copy(h.HeaderData[:], raw)
	h.HeaderLen = n
	if err := ParseRequest(h); err != ErrTooManyExtraFields {
		t.Fatalf("err = %v, want ErrTooManyExtraFields", err)
	}
}

func TestFillResponseHeader(t *testing.T) {
	resp := &Header{Status: StatusOK}
	resp.StdFields[HNameContentType] = stringView("text/html; charset=utf-8")
	resp.StdFields[HNameServer] = stringView("relay")

	if err := FillResponseHeader(resp, 65536); err != nil {
		t.Fatalf("FillResponseHeader error = %v", err)
	}

	got := string(resp.HeaderData[:resp.HeaderLen])
	want := "HTTP/1.0 200 OK\r\nContent-Type: text/html; charset=utf-8\r\nServer: relay\r\nContent-Length: 65536\r\n\r\n"
	if got != want {
		t.Errorf("header = %q, want %q", got, want)
	}
}

func TestFillResponseHeaderRespectsExplicitContentLength(t *testing.T) {
	resp := &Header{Status: StatusOK}
	resp.StdFields[HNameContentLength] = stringView("42")

	if err := FillResponseHeader(resp, 999); err != nil {
		t.Fatalf("FillResponseHeader error = %v", err)
	}
	got := string(resp.HeaderData[:resp.HeaderLen])
	if got != "HTTP/1.0 200 OK\r\nContent-Length: 42\r\n\r\n" {
		t.Errorf("header = %q", got)
	}
}

func TestFillResponseHeaderTooLong(t *testing.T) {
	resp := &Header{Status: StatusOK}
	big := make([]byte, HeaderSizeMax)
	for i := range big {
		big[i] = 'x'
	}
	resp.StdFields[HNameAllow] = stringView(string(big))

	if err := FillResponseHeader(resp, 0); err != ErrResponseHeaderTooLong {
		t.Fatalf("err = %v, want ErrResponseHeaderTooLong", err)
	}
}

func stringView(s string) strbuf.View {
	return strbuf.View{Data: []byte(s)}
}
