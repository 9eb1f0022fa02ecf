package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestErrReturnsNilWhenClean(t *testing.T) {
	verr := &Error{}
	if err := verr.Err(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAddAccumulatesFields(t *testing.T) {
	verr := &Error{}
	verr.Add("name", "must be between %d and %d characters", 2, 50)
	verr.Add("symbol", "must not be empty")

	err := verr.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(verr.Fields))
	}
	if verr.Fields[0].Message != "must be between 2 and 50 characters" {
		t.Fatalf("format args not applied: %q", verr.Fields[0].Message)
	}
	if !strings.Contains(err.Error(), "name:") || !strings.Contains(err.Error(), "symbol:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestErrorfMatchesWithErrorsAs(t *testing.T) {
	var err error = Errorf("walletAddress", "must not be empty")

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatal("errors.As failed to match")
	}
	if verr.Fields[0].Field != "walletAddress" {
		t.Fatalf("unexpected field %q", verr.Fields[0].Field)
	}
}
