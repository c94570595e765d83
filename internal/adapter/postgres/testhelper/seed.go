package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

// UniquePhone returns a UK-shaped mobile number unlikely to collide across parallel tests.
func UniquePhone() string {
	n := uuid.New().ID() % 100000000
	return "077" + pad8(n)
}

func pad8(n uint32) string {
	b := []byte("00000000")
	for i := 7; i >= 0 && n > 0; i-- {
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b)
}

// SeedWaitlistEntry inserts a waitlist row directly, bypassing the pipeline,
// so tests can control created_at and status.
func SeedWaitlistEntry(t *testing.T, pool *pgxpool.Pool, phone string, status domain.SubmissionStatus, createdAt time.Time) domain.Submission {
	t.Helper()
	ctx := context.Background()

	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	sub := domain.Submission{
		Reference:   domain.GenerateReference("WL", createdAt),
		FormType:    domain.FormWaitlist,
		Status:      status,
		SubjectName: "Seeded Parent",
		Phone:       &phone,
		Payload: []domain.Field{
			{Key: "fullName", Label: "Full name", Value: "Seeded Parent"},
			{Key: "phoneNumber", Label: "Phone", Value: phone},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	payload, err := json.Marshal(sub.Payload)
	if err != nil {
		t.Fatalf("testhelper: marshal payload: %v", err)
	}

	err = pool.QueryRow(ctx,
		`INSERT INTO submissions (reference, form_type, status, subject_name, phone, payload, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		sub.Reference, string(sub.FormType), string(sub.Status), sub.SubjectName, phone, payload, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedWaitlistEntry insert: %v", err)
	}

	return sub
}
