package postgres

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapMarksUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrap("store ferry", cause)

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("errors.Is(err, ErrUnavailable) = false for %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false for %v", err)
	}
	if !strings.HasPrefix(err.Error(), "store ferry: ") {
		t.Errorf("message = %q, want op prefix", err.Error())
	}
}
