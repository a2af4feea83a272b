package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/go-kit/kit/metrics/discard"
	stdopentracing "github.com/opentracing/opentracing-go"

	"github.com/soundline/ferryops/ferry"
)

func TestSetWrapsService(t *testing.T) {
	fx := setup()
	set := NewSet(fx.s, discard.NewHistogram(), stdopentracing.GlobalTracer(), nil)

	resp, err := set.AddFerryEndpoint(context.Background(), addFerryRequest{ID: "F001", Name: "MF Hammershus", Capacity: 720})
	if err != nil {
		t.Fatalf("add ferry endpoint: %v", err)
	}
	if e := resp.(addFerryResponse).error(); e != nil {
		t.Fatalf("add ferry: %v", e)
	}
	if _, err := fx.ferries.Find("F001"); err != nil {
		t.Errorf("ferry not stored: %v", err)
	}

	resp, err = set.FindFerryEndpoint(context.Background(), findFerryRequest{ID: "F404"})
	if err != nil {
		t.Fatalf("find ferry endpoint: %v", err)
	}
	if e := resp.(findFerryResponse).error(); !errors.Is(e, ferry.ErrUnknown) {
		t.Errorf("find unknown: err = %v, want ferry.ErrUnknown", e)
	}
}
