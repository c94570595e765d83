package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	phone := UniquePhone()
	sub := SeedWaitlistEntry(t, pool, phone, domain.StatusActive, time.Now())

	var reference string
	err := pool.QueryRow(
		context.Background(),
		`SELECT reference FROM submissions WHERE id = $1`,
		sub.ID,
	).Scan(&reference)
	if err != nil {
		t.Fatalf("expected submission in DB, got error: %v", err)
	}

	if reference != sub.Reference {
		t.Fatalf("expected reference %q, got %q", sub.Reference, reference)
	}
}
