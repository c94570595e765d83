package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/config"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/intake"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/notify"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/service/waitlist"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/transport/middleware"
)

type routerFixture struct {
	handler     http.Handler
	submissions atomic.Int32
}

func newRouterFixture(t *testing.T, formsPerMinute int) *routerFixture {
	t.Helper()

	f := &routerFixture{}
	forms := NewFormHandler(intakeFunc(func(context.Context, intake.Form) (*intake.Result, error) {
		f.submissions.Add(1)
		return &intake.Result{ID: uuid.New(), Reference: "CNT-ABC-123456", SubmittedAt: time.Now()}, nil
	}), 1<<16, testLogger())
	status := NewWaitlistHandler(waitlistFunc(func(context.Context, string) (*waitlist.Status, error) {
		return nil, domain.ErrNotFound
	}), testLogger())

	limiter := middleware.NewRateLimiter(time.Hour)
	t.Cleanup(limiter.Stop)

	f.handler = NewRouter(RouterDeps{
		Forms:          forms,
		Waitlist:       status,
		Cron:           NewCronHandler(&pingerMock{}, "cron-secret", testLogger()),
		Health:         NewHealthHandler(&pingerMock{}, "memory", queueStatsStub(notify.QueueStats{Capacity: 10}), "test"),
		Limiter:        limiter,
		CORS:           config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,OPTIONS"},
		FormsPerMinute: formsPerMinute,
	}, testLogger())
	return f
}

func (f *routerFixture) do(method, path, clientIP string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{"fullName":"Anne Lovelace","phoneNumber":"07700900123","message":"Any places in September?"}`)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("X-Forwarded-For", clientIP)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_FormLimitIsSharedAcrossFormRoutes(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, 3)
	const ip = "198.51.100.20"

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/forms/contact", ip).Code)
	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/forms/availability", ip).Code)
	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/waitlist", ip).Code)

	rec := f.do(http.MethodPost, "/api/forms/registration", ip)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"message":"Too many requests"`)
	assert.Equal(t, int32(3), f.submissions.Load(), "rejected request must not reach intake")
}

func TestRouter_ReadRoutesAreNotFormLimited(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, 1)
	const ip = "198.51.100.21"

	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/forms/contact", ip).Code)
	require.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/forms/contact", ip).Code)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/waitlist?phone=07700900123", ip).Code)
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", ip).Code)
	}
}

func TestRouter_FormLimitPerClient(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, 1)

	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/forms/contact", "198.51.100.22").Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodPost, "/api/forms/contact", "198.51.100.22").Code)
	assert.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/forms/contact", "198.51.100.23").Code)
}

func TestRouter_EveryFormSlugIsMounted(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t, 0)
	for slug := range formRoutes {
		rec := f.do(http.MethodPost, "/api/forms/"+slug, "198.51.100.24")
		assert.Equal(t, http.StatusCreated, rec.Code, slug)
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader), slug)
	}
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/forms/unknown", "198.51.100.24").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodGet, "/api/forms/contact", "198.51.100.24").Code)
}
