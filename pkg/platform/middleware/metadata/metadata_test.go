package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "first forwarded hop", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, remote: "1.1.1.1:80", want: "10.0.0.1"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 10.0.0.9 "}, remote: "1.1.1.1:80", want: "10.0.0.9"},
		{name: "remote ipv4", remote: "192.168.1.5:5123", want: "192.168.1.5"},
		{name: "remote ipv6", remote: "[::1]:5123", want: "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = GetClientIP(r.Context())
		ua = GetUserAgent(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:9000"
	r.Header.Set("User-Agent", "teller-desk/2.1")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "10.1.2.3", ip)
	assert.Equal(t, "teller-desk/2.1", ua)
}
