package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

func TestGuard_FormsWithoutRuleSkipStore(t *testing.T) {
	t.Parallel()

	store := &submissionStoreMock{}
	g := NewGuard(store)

	require.NoError(t, g.Check(context.Background(), validRegistration(), testNow))
	assert.Empty(t, store.CountCalls())
}

func TestGuard_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		form      Form
		count     int
		wantErr   error
		wantQuery func(t *testing.T, q domain.Query)
	}{
		{
			name:    "contact inside window",
			form:    validContact(),
			count:   1,
			wantErr: domain.ErrRateLimited,
			wantQuery: func(t *testing.T, q domain.Query) {
				assert.Equal(t, testNow.Add(-ContactWindow), q.CreatedAfter)
				assert.Equal(t, "Do you have any places in September?", q.PayloadEquals["message"])
			},
		},
		{
			name:    "job same position",
			form:    validJob(),
			count:   2,
			wantErr: domain.ErrConflict,
			wantQuery: func(t *testing.T, q domain.Query) {
				assert.Equal(t, "grace@example.com", q.Email)
				assert.Equal(t, "room-leader", q.PayloadEquals["position"])
				assert.Equal(t, testNow.Add(-JobWindow), q.CreatedAfter)
			},
		},
		{
			name:    "waitlist any status",
			form:    validWaitlist(),
			count:   1,
			wantErr: domain.ErrConflict,
			wantQuery: func(t *testing.T, q domain.Query) {
				assert.Equal(t, domain.FormWaitlist, q.FormType)
				assert.Empty(t, q.Status)
				assert.True(t, q.CreatedAfter.IsZero())
			},
		},
		{
			name:  "no match",
			form:  validContact(),
			count: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, tt.form.Validate(testNow))
			store := &submissionStoreMock{
				CountFunc: func(ctx context.Context, q domain.Query) (int, error) { return tt.count, nil },
			}
			err := NewGuard(store).Check(context.Background(), tt.form, testNow)

			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
			require.Len(t, store.CountCalls(), 1)
			if tt.wantQuery != nil {
				tt.wantQuery(t, store.CountCalls()[0].Q)
			}
		})
	}
}

func TestGuard_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	store := &submissionStoreMock{
		CountFunc: func(ctx context.Context, q domain.Query) (int, error) { return 0, boom },
	}
	f := validContact()
	require.NoError(t, f.Validate(testNow))

	err := NewGuard(store).Check(context.Background(), f, testNow)
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrRateLimited))
}

func TestRejectionFor(t *testing.T) {
	t.Parallel()

	assert.Nil(t, rejectionFor(validRegistration(), testNow))

	var ce *domain.ConflictError
	require.ErrorAs(t, rejectionFor(validWaitlist(), testNow), &ce)
	assert.Contains(t, ce.Message, "already on our waitlist")
}
