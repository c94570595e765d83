package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/adapter/memory"
	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/domain"
)

func TestDecode_MalformedBodies(t *testing.T) {
	t.Parallel()

	for _, body := range []string{``, `null`, `[]`, `"text"`, `{"fullName":`, `{"fullName":"Ann"} trailing`} {
		t.Run(body, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(domain.FormContact, []byte(body))
			assert.ErrorIs(t, err, ErrMalformedBody)
		})
	}
}

func TestDecode_WellTypedBodyReturnsConcreteForm(t *testing.T) {
	t.Parallel()

	f, err := Decode(domain.FormContact, []byte(`{"fullName":"Anne Lovelace","phoneNumber":"07700900123","message":"Any places in September?","extra":1}`))
	require.NoError(t, err)

	contact, ok := f.(*ContactForm)
	require.True(t, ok)
	assert.Equal(t, "Anne Lovelace", contact.FullName)
	assert.NoError(t, f.Validate(testNow))
}

func TestDecode_WrongTypesJoinRuleViolations(t *testing.T) {
	t.Parallel()

	f, err := Decode(domain.FormContact, []byte(`{"fullName":123,"phoneNumber":"07700900123","message":"hi"}`))
	require.NoError(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(f.Validate(testNow), &ve))
	assert.Equal(t, []domain.FieldError{
		{Field: "fullName", Message: "fullName must be text"},
		{Field: "message", Message: "Message must be at least 10 characters"},
	}, ve.Errors)
}

func TestDecode_WrongTypeOnOptionalField(t *testing.T) {
	t.Parallel()

	f, err := Decode(domain.FormWaitlist, []byte(`{"fullName":"Ada Byron","phoneNumber":"07700900001","childAge":3,"notes":["a"]}`))
	require.NoError(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(f.Validate(testNow), &ve))
	assert.Equal(t, []domain.FieldError{
		{Field: "childAge", Message: "childAge must be text"},
		{Field: "notes", Message: "notes must be text"},
	}, ve.Errors)
}

func TestDecode_WrongTypeOnList(t *testing.T) {
	t.Parallel()

	f, err := Decode(domain.FormAvailability, []byte(`{"preferredDays":"monday"}`))
	require.NoError(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(f.Validate(testNow), &ve))
	assert.Contains(t, ve.Messages(), "preferredDays must be a list")
}

func TestDecode_WrappedFormKeepsDuplicateRule(t *testing.T) {
	t.Parallel()

	store := memory.New()
	svc := NewService(testLogger(), store, store, noopDispatcher(), acceptingQueue(), nil, nil, 0)
	_, err := svc.Submit(context.Background(), validWaitlist())
	require.NoError(t, err)

	f, err := Decode(domain.FormWaitlist, []byte(`{"fullName":"Anne Lovelace","phoneNumber":"+44 7700 900123","childAge":3}`))
	require.NoError(t, err)
	require.Error(t, f.Validate(testNow))

	var conflict *domain.ConflictError
	assert.ErrorAs(t, svc.guard.Check(context.Background(), f, testNow), &conflict)
	assert.ErrorAs(t, rejectionFor(f, testNow), &conflict)
}
