package scheduling

import (
	"errors"
	"testing"

	"github.com/go-kit/kit/log"
)

func TestLoggingServiceNilSchedule(t *testing.T) {
	fx := setup(t)
	s := NewLoggingService(log.NewNopLogger(), fx.s)

	if err := s.AddSchedule(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("add nil: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.UpdateSchedule(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("update nil: err = %v, want ErrInvalidArgument", err)
	}
}
