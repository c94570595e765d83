package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/pkg/ctxutil"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantKept bool
	}{
		{name: "uuid from the website", incoming: "7f0c3a9e-2b7d-4f8e-9a51-0c6f1d2e3b4a", wantKept: true},
		{name: "proxy trace id", incoming: "Root=1-67891233-abcdef012345678912345678", wantKept: true},
		{name: "missing"},
		{name: "contains space", incoming: "abc def"},
		{name: "control character", incoming: "abc\x1bdef"},
		{name: "too long", incoming: strings.Repeat("a", maxRequestIDLen+1)},
		{name: "max length", incoming: strings.Repeat("a", maxRequestIDLen), wantKept: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var inCtx string
			h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				inCtx = ctxutil.RequestIDFromCtx(r.Context())
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/forms/contact", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			echoed := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, inCtx, echoed)
			if tt.wantKept {
				assert.Equal(t, tt.incoming, echoed)
				return
			}
			_, err := uuid.Parse(echoed)
			assert.NoError(t, err, "minted id %q", echoed)
		})
	}
}
