package catalog

import (
	"errors"
	"testing"

	"github.com/go-kit/kit/log"
)

func TestLoggingServiceNilArguments(t *testing.T) {
	fx := setup()
	s := NewLoggingService(log.NewNopLogger(), fx.s)

	if err := s.AddFerry(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("add nil ferry: err = %v, want ErrInvalidArgument", err)
	}
	if err := s.AddTraveler(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("add nil traveler: err = %v, want ErrInvalidArgument", err)
	}
	if err := s.UpdateTraveler(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("update nil traveler: err = %v, want ErrInvalidArgument", err)
	}
}
