package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/postgres"
)

func TestEncodeError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{ferry.ErrUnknown, http.StatusNotFound},
		{ErrInvalidArgument, http.StatusBadRequest},
		{ErrRouteInUse, http.StatusConflict},
		{fmt.Errorf("store ferry: %w: %w", postgres.ErrUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		encodeError(context.Background(), c.err, w)
		if w.Code != c.code {
			t.Errorf("%v: status = %d, want %d", c.err, w.Code, c.code)
		}
	}
}
