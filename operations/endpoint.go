package operations

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/tracing/opentracing"
	"github.com/go-kit/kit/tracing/zipkin"

	stdopentracing "github.com/opentracing/opentracing-go"
	stdzipkin "github.com/openzipkin/zipkin-go"
	"github.com/sony/gobreaker"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/traveler"
)

type attachRequest struct {
	Departure departure.ID
	Traveler  traveler.ID
}

type departureResponse struct {
	Departure *departure.Departure `json:"departure,omitempty"`
	Err       error                `json:"error,omitempty"`
}

func (r departureResponse) error() error { return r.Err }

func makeAttachEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(attachRequest)
		d, err := s.Attach(req.Departure, req.Traveler)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type detachRequest struct {
	Departure departure.ID
	Traveler  traveler.ID
}

func makeDetachEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(detachRequest)
		d, err := s.Detach(req.Departure, req.Traveler)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type updateDepartureRequest struct {
	Departure departure.ID
	Attach    []traveler.ID
	Detach    []traveler.ID
}

func makeUpdateDepartureEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateDepartureRequest)
		d, err := s.UpdateDeparture(req.Departure, req.Attach, req.Detach)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type delayRequest struct {
	Ferry   ferry.ID
	Date    time.Time
	Seq     int
	Minutes int
}

func makeDelayEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(delayRequest)
		d, err := s.Delay(req.Ferry, req.Date, req.Seq, req.Minutes)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type cancelSailingsRequest struct {
	Ferry ferry.ID
	Date  time.Time
}

type cancelSailingsResponse struct {
	Err error `json:"error,omitempty"`
}

func (r cancelSailingsResponse) error() error { return r.Err }

func makeCancelSailingsEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(cancelSailingsRequest)
		return cancelSailingsResponse{Err: s.CancelSailings(req.Ferry, req.Date)}, nil
	}
}

type cancelDepartureRequest struct {
	Departure departure.ID
}

type cancelDepartureResponse struct {
	Err error `json:"error,omitempty"`
}

func (r cancelDepartureResponse) error() error { return r.Err }

func makeCancelDepartureEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(cancelDepartureRequest)
		return cancelDepartureResponse{Err: s.CancelDeparture(req.Departure)}, nil
	}
}

// Set collects all of the endpoints that compose the operations service.
type Set struct {
	AttachEndpoint          endpoint.Endpoint
	DetachEndpoint          endpoint.Endpoint
	UpdateDepartureEndpoint endpoint.Endpoint
	DelayEndpoint           endpoint.Endpoint
	CancelSailingsEndpoint  endpoint.Endpoint
	CancelDepartureEndpoint endpoint.Endpoint
}

// NewSet returns a Set that wraps the provided service, and wires in all of
// the expected endpoint middlewares via the various parameters.
func NewSet(svc Service, duration metrics.Histogram, otTracer stdopentracing.Tracer, zipkinTracer *stdzipkin.Tracer) Set {
	wrap := func(name string, e endpoint.Endpoint) endpoint.Endpoint {
		e = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Limit(1), 100))(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{}))(e)
		e = opentracing.TraceServer(otTracer, name)(e)
		if zipkinTracer != nil {
			e = zipkin.TraceEndpoint(zipkinTracer, name)(e)
		}
		e = instrumenting(duration.With("method", name))(e)
		return e
	}

	return Set{
		AttachEndpoint:          wrap("Attach", makeAttachEndpoint(svc)),
		DetachEndpoint:          wrap("Detach", makeDetachEndpoint(svc)),
		UpdateDepartureEndpoint: wrap("UpdateDeparture", makeUpdateDepartureEndpoint(svc)),
		DelayEndpoint:           wrap("Delay", makeDelayEndpoint(svc)),
		CancelSailingsEndpoint:  wrap("CancelSailings", makeCancelSailingsEndpoint(svc)),
		CancelDepartureEndpoint: wrap("CancelDeparture", makeCancelDepartureEndpoint(svc)),
	}
}

// instrumenting records the duration and success of each invocation.
func instrumenting(duration metrics.Histogram) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				duration.With("success", fmt.Sprint(err == nil)).Observe(time.Since(begin).Seconds())
			}(time.Now())
			return next(ctx, request)
		}
	}
}

// Attach implements the service interface so Set can be used as a service
func (s Set) Attach(id departure.ID, t traveler.ID) (*departure.Departure, error) {
	resp, err := s.AttachEndpoint(context.Background(), attachRequest{Departure: id, Traveler: t})
	if err != nil {
		return nil, err
	}
	response := resp.(departureResponse)
	return response.Departure, response.Err
}

// Detach implements the service interface so Set can be used as a service
func (s Set) Detach(id departure.ID, t traveler.ID) (*departure.Departure, error) {
	resp, err := s.DetachEndpoint(context.Background(), detachRequest{Departure: id, Traveler: t})
	if err != nil {
		return nil, err
	}
	response := resp.(departureResponse)
	return response.Departure, response.Err
}

// UpdateDeparture implements the service interface so Set can be used as a service
func (s Set) UpdateDeparture(id departure.ID, attach, detach []traveler.ID) (*departure.Departure, error) {
	resp, err := s.UpdateDepartureEndpoint(context.Background(), updateDepartureRequest{Departure: id, Attach: attach, Detach: detach})
	if err != nil {
		return nil, err
	}
	response := resp.(departureResponse)
	return response.Departure, response.Err
}

// Delay implements the service interface so Set can be used as a service
func (s Set) Delay(f ferry.ID, date time.Time, seq int, minutes int) (*departure.Departure, error) {
	resp, err := s.DelayEndpoint(context.Background(), delayRequest{Ferry: f, Date: date, Seq: seq, Minutes: minutes})
	if err != nil {
		return nil, err
	}
	response := resp.(departureResponse)
	return response.Departure, response.Err
}

// CancelSailings implements the service interface so Set can be used as a service
func (s Set) CancelSailings(f ferry.ID, date time.Time) error {
	resp, err := s.CancelSailingsEndpoint(context.Background(), cancelSailingsRequest{Ferry: f, Date: date})
	if err != nil {
		return err
	}
	response := resp.(cancelSailingsResponse)
	return response.Err
}

// CancelDeparture implements the service interface so Set can be used as a service
func (s Set) CancelDeparture(id departure.ID) error {
	resp, err := s.CancelDepartureEndpoint(context.Background(), cancelDepartureRequest{Departure: id})
	if err != nil {
		return err
	}
	response := resp.(cancelDepartureResponse)
	return response.Err
}
