package scheduling

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
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
)

type addScheduleRequest struct {
	Schedule *schedule.Schedule
}

type addScheduleResponse struct {
	Err error `json:"error,omitempty"`
}

func (r addScheduleResponse) error() error { return r.Err }

func makeAddScheduleEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(addScheduleRequest)
		return addScheduleResponse{Err: s.AddSchedule(req.Schedule)}, nil
	}
}

type updateScheduleRequest struct {
	Schedule *schedule.Schedule
}

type updateScheduleResponse struct {
	Schedule *schedule.Schedule `json:"schedule,omitempty"`
	Err      error              `json:"error,omitempty"`
}

func (r updateScheduleResponse) error() error { return r.Err }

func makeUpdateScheduleEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateScheduleRequest)
		sched, err := s.UpdateSchedule(req.Schedule)
		return updateScheduleResponse{Schedule: sched, Err: err}, nil
	}
}

type deleteScheduleRequest struct {
	ID schedule.ID
}

type deleteScheduleResponse struct {
	Err error `json:"error,omitempty"`
}

func (r deleteScheduleResponse) error() error { return r.Err }

func makeDeleteScheduleEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(deleteScheduleRequest)
		return deleteScheduleResponse{Err: s.DeleteSchedule(req.ID)}, nil
	}
}

type listSchedulesRequest struct{}

type listSchedulesResponse struct {
	Schedules []*schedule.Schedule `json:"schedules,omitempty"`
	Err       error                `json:"error,omitempty"`
}

func (r listSchedulesResponse) error() error { return r.Err }

func makeListSchedulesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(listSchedulesRequest)
		schedules, err := s.Schedules()
		return listSchedulesResponse{Schedules: schedules, Err: err}, nil
	}
}

type schedulesForDateRequest struct {
	Date time.Time
}

func makeSchedulesForDateEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(schedulesForDateRequest)
		schedules, err := s.SchedulesForDate(req.Date)
		return listSchedulesResponse{Schedules: schedules, Err: err}, nil
	}
}

type materializeRequest struct {
	ID   schedule.ID
	Date time.Time
}

type departureResponse struct {
	Departure *departure.Departure `json:"departure,omitempty"`
	Err       error                `json:"error,omitempty"`
}

func (r departureResponse) error() error { return r.Err }

func makeMaterializeEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(materializeRequest)
		d, err := s.Materialize(req.ID, req.Date)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type createAdHocRequest struct {
	Ferry    ferry.ID
	Route    route.ID
	Departs  time.Time
	Crossing time.Duration
}

func makeCreateAdHocEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(createAdHocRequest)
		d, err := s.CreateAdHoc(req.Ferry, req.Route, req.Departs, req.Crossing)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type findDepartureRequest struct {
	ID departure.ID
}

func makeFindDepartureEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(findDepartureRequest)
		d, err := s.FindDeparture(req.ID)
		return departureResponse{Departure: d, Err: err}, nil
	}
}

type departuresForDateRequest struct {
	Date time.Time
}

type listDeparturesResponse struct {
	Departures []*departure.Departure `json:"departures"`
	Err        error                  `json:"error,omitempty"`
}

func (r listDeparturesResponse) error() error { return r.Err }

func makeDeparturesForDateEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(departuresForDateRequest)
		departures, err := s.DeparturesForDate(req.Date)
		return listDeparturesResponse{Departures: departures, Err: err}, nil
	}
}

type sailingsForRequest struct {
	Ferry ferry.ID
	Date  time.Time
}

func makeSailingsForEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(sailingsForRequest)
		departures, err := s.SailingsFor(req.Ferry, req.Date)
		return listDeparturesResponse{Departures: departures, Err: err}, nil
	}
}

// Set collects all of the endpoints that compose the scheduling service.
type Set struct {
	AddScheduleEndpoint       endpoint.Endpoint
	UpdateScheduleEndpoint    endpoint.Endpoint
	DeleteScheduleEndpoint    endpoint.Endpoint
	ListSchedulesEndpoint     endpoint.Endpoint
	SchedulesForDateEndpoint  endpoint.Endpoint
	MaterializeEndpoint       endpoint.Endpoint
	CreateAdHocEndpoint       endpoint.Endpoint
	FindDepartureEndpoint     endpoint.Endpoint
	DeparturesForDateEndpoint endpoint.Endpoint
	SailingsForEndpoint       endpoint.Endpoint
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
		AddScheduleEndpoint:       wrap("AddSchedule", makeAddScheduleEndpoint(svc)),
		UpdateScheduleEndpoint:    wrap("UpdateSchedule", makeUpdateScheduleEndpoint(svc)),
		DeleteScheduleEndpoint:    wrap("DeleteSchedule", makeDeleteScheduleEndpoint(svc)),
		ListSchedulesEndpoint:     wrap("ListSchedules", makeListSchedulesEndpoint(svc)),
		SchedulesForDateEndpoint:  wrap("SchedulesForDate", makeSchedulesForDateEndpoint(svc)),
		MaterializeEndpoint:       wrap("Materialize", makeMaterializeEndpoint(svc)),
		CreateAdHocEndpoint:       wrap("CreateAdHoc", makeCreateAdHocEndpoint(svc)),
		FindDepartureEndpoint:     wrap("FindDeparture", makeFindDepartureEndpoint(svc)),
		DeparturesForDateEndpoint: wrap("DeparturesForDate", makeDeparturesForDateEndpoint(svc)),
		SailingsForEndpoint:       wrap("SailingsFor", makeSailingsForEndpoint(svc)),
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
