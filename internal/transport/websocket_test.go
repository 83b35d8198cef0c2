package transport

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{name: "forwarded chain takes first hop", xff: "203.0.113.7, 10.0.0.1", want: "203.0.113.7"},
		{name: "single forwarded", xff: " 203.0.113.9 ", want: "203.0.113.9"},
		{name: "real ip header", realIP: "198.51.100.4", want: "198.51.100.4"},
		{name: "remote addr strips port", remoteAddr: "192.0.2.10:54321", want: "192.0.2.10"},
		{name: "forwarded wins over real ip", xff: "203.0.113.1", realIP: "198.51.100.4", want: "203.0.113.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}
			if tc.remoteAddr != "" {
				r.RemoteAddr = tc.remoteAddr
			}
			assert.Equal(t, tc.want, ClientIP(r))
		})
	}
}
