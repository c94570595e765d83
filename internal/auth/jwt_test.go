package auth

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

const testSecret = "test-secret-at-least-32-chars-long-for-links"

func newTestManager(t *testing.T, ttl time.Duration) *LinkManager {
	t.Helper()
	m, err := NewLinkManager(testSecret, "spring-lane-test", ttl)
	if err != nil {
		t.Fatalf("NewLinkManager: %v", err)
	}
	return m
}

func TestLinkManager_SignAndVerify(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, time.Hour)

	token, err := m.Sign("REG-ABC-123456", domain.FormRegistration)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := m.Verify(token, "REG-ABC-123456"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := m.Verify(token, "reg-abc-123456"); err != nil {
		t.Fatalf("Verify is case-insensitive on reference: %v", err)
	}
}

func TestLinkManager_VerifyFailures(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, time.Hour)
	token, _ := m.Sign("REG-ABC-123456", domain.FormRegistration)

	other, _ := NewLinkManager("another-secret-that-is-also-32-chars-long", "spring-lane-test", time.Hour)
	foreign, _ := other.Sign("REG-ABC-123456", domain.FormRegistration)

	expired := newTestManager(t, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.Sign("REG-ABC-123456", domain.FormRegistration)

	tests := []struct {
		name      string
		token     string
		reference string
	}{
		{name: "empty", token: "", reference: "REG-ABC-123456"},
		{name: "garbage", token: "not.a.jwt", reference: "REG-ABC-123456"},
		{name: "wrong reference", token: token, reference: "MED-ABC-123456"},
		{name: "different secret", token: foreign, reference: "REG-ABC-123456"},
		{name: "expired", token: stale, reference: "REG-ABC-123456"},
		{name: "tampered", token: token[:len(token)-2] + "xx", reference: "REG-ABC-123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Verify(tt.token, tt.reference)
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("Verify error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestLinkManager_DerivedKeyDiffersFromSecret(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, time.Hour)
	if string(m.key) == testSecret || len(m.key) != keyLen {
		t.Fatal("signing key must be derived, not the raw secret")
	}
}

func TestLinkManager_URL(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, time.Hour)

	link, err := m.URL("https://springlane.test/", "JOB-ABC-123456", domain.FormJobApplication)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if !strings.HasPrefix(link, "https://springlane.test/api/documents/JOB-ABC-123456?token=") {
		t.Fatalf("URL = %q", link)
	}

	u, _ := url.Parse(link)
	if err := m.Verify(u.Query().Get("token"), "JOB-ABC-123456"); err != nil {
		t.Fatalf("token in URL does not verify: %v", err)
	}
}
