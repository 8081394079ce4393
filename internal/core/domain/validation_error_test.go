package domain

import (
	"errors"
	"testing"
	"time"
)

func TestValidationError_ErrIsNilWhenEmpty(t *testing.T) {
	v := &ValidationError{}
	if v.Err() != nil {
		t.Fatalf("expected nil error for an empty collection")
	}

	var nilErr *ValidationError
	if !nilErr.Empty() {
		t.Fatalf("nil collection should be empty")
	}
}

func TestValidationError_MatchesEveryKind(t *testing.T) {
	v := &ValidationError{}
	v.Add("password", ErrWeakPassword, "too short")
	v.Add("password", ErrWeakPassword, "needs a digit")
	v.Add("password_confirm", ErrPasswordMismatch, "passwords do not match")

	err := v.Err()
	if !errors.Is(err, ErrWeakPassword) || !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected both kinds to match, got %v", err)
	}
	if errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("unexpected match for a kind that was never added")
	}

	var got *ValidationError
	if !errors.As(err, &got) || len(got.Errors) != 3 {
		t.Fatalf("expected errors.As to recover all three entries")
	}
}

func TestValidationError_FieldsKeepOrder(t *testing.T) {
	v := &ValidationError{}
	v.Add("password", ErrWeakPassword, "first")
	v.Add("email", ErrRequired, "email is required")
	v.Add("password", ErrWeakPassword, "second")

	fields := v.Fields()
	if len(fields["password"]) != 2 || fields["password"][0] != "first" || fields["password"][1] != "second" {
		t.Fatalf("unexpected password messages: %v", fields["password"])
	}
	if !v.Has("email", ErrRequired) || v.Has("email", ErrWeakPassword) {
		t.Fatalf("Has reported the wrong kinds")
	}
	if want := "validation failed: password: first; email: email is required; password: second"; v.Error() != want {
		t.Fatalf("unexpected message %q", v.Error())
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatalf("session should still be valid")
	}
	if !s.Expired(now.Add(2 * time.Minute)) {
		t.Fatalf("session should be expired")
	}
}
