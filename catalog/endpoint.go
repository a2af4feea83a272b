package catalog

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

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/traveler"
)

type addFerryRequest struct {
	ID       ferry.ID
	Name     string
	Capacity int
}

type addFerryResponse struct {
	Err error `json:"error,omitempty"`
}

func (r addFerryResponse) error() error { return r.Err }

func makeAddFerryEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(addFerryRequest)
		err := s.AddFerry(ferry.New(req.ID, req.Name, req.Capacity))
		return addFerryResponse{Err: err}, nil
	}
}

type findFerryRequest struct {
	ID ferry.ID
}

type findFerryResponse struct {
	Ferry *ferry.Ferry `json:"ferry,omitempty"`
	Err   error        `json:"error,omitempty"`
}

func (r findFerryResponse) error() error { return r.Err }

func makeFindFerryEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(findFerryRequest)
		f, err := s.FindFerry(req.ID)
		return findFerryResponse{Ferry: f, Err: err}, nil
	}
}

type listFerriesRequest struct{}

type listFerriesResponse struct {
	Ferries []*ferry.Ferry `json:"ferries,omitempty"`
	Err     error          `json:"error,omitempty"`
}

func (r listFerriesResponse) error() error { return r.Err }

func makeListFerriesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(listFerriesRequest)
		ferries, err := s.Ferries()
		return listFerriesResponse{Ferries: ferries, Err: err}, nil
	}
}

type deleteFerryRequest struct {
	ID ferry.ID
}

type deleteFerryResponse struct {
	Err error `json:"error,omitempty"`
}

func (r deleteFerryResponse) error() error { return r.Err }

func makeDeleteFerryEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(deleteFerryRequest)
		return deleteFerryResponse{Err: s.DeleteFerry(req.ID)}, nil
	}
}

type updateCapacityRequest struct {
	ID       ferry.ID
	Capacity int
}

type updateCapacityResponse struct {
	Ferry *ferry.Ferry `json:"ferry,omitempty"`
	Err   error        `json:"error,omitempty"`
}

func (r updateCapacityResponse) error() error { return r.Err }

func makeUpdateCapacityEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateCapacityRequest)
		f, err := s.UpdateCapacity(req.ID, req.Capacity)
		return updateCapacityResponse{Ferry: f, Err: err}, nil
	}
}

type addRouteRequest struct {
	ID          route.ID
	Origin      harbour.Code
	Destination harbour.Code
	BasePrice   float64
}

type addRouteResponse struct {
	Route *route.Route `json:"route,omitempty"`
	Err   error        `json:"error,omitempty"`
}

func (r addRouteResponse) error() error { return r.Err }

func makeAddRouteEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(addRouteRequest)
		rt, err := s.AddRoute(req.ID, req.Origin, req.Destination, req.BasePrice)
		return addRouteResponse{Route: rt, Err: err}, nil
	}
}

type listRoutesRequest struct{}

type listRoutesResponse struct {
	Routes []*route.Route `json:"routes,omitempty"`
	Err    error          `json:"error,omitempty"`
}

func (r listRoutesResponse) error() error { return r.Err }

func makeListRoutesEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(listRoutesRequest)
		routes, err := s.Routes()
		return listRoutesResponse{Routes: routes, Err: err}, nil
	}
}

type deleteRouteRequest struct {
	ID route.ID
}

type deleteRouteResponse struct {
	Err error `json:"error,omitempty"`
}

func (r deleteRouteResponse) error() error { return r.Err }

func makeDeleteRouteEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(deleteRouteRequest)
		return deleteRouteResponse{Err: s.DeleteRoute(req.ID)}, nil
	}
}

type updatePriceRequest struct {
	ID    route.ID
	Price float64
}

type updatePriceResponse struct {
	Route *route.Route `json:"route,omitempty"`
	Err   error        `json:"error,omitempty"`
}

func (r updatePriceResponse) error() error { return r.Err }

func makeUpdatePriceEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updatePriceRequest)
		rt, err := s.UpdatePrice(req.ID, req.Price)
		return updatePriceResponse{Route: rt, Err: err}, nil
	}
}

type listHarboursRequest struct{}

type listHarboursResponse struct {
	Harbours []*harbour.Harbour `json:"harbours,omitempty"`
	Err      error              `json:"error,omitempty"`
}

func (r listHarboursResponse) error() error { return r.Err }

func makeListHarboursEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(listHarboursRequest)
		harbours, err := s.Harbours()
		return listHarboursResponse{Harbours: harbours, Err: err}, nil
	}
}

type addTravelerRequest struct {
	ID          traveler.ID
	Kind        traveler.Kind
	Description string
}

type addTravelerResponse struct {
	ID  traveler.ID `json:"traveler_id,omitempty"`
	Err error       `json:"error,omitempty"`
}

func (r addTravelerResponse) error() error { return r.Err }

func makeAddTravelerEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(addTravelerRequest)
		id := req.ID
		if id == "" {
			id = traveler.NextID()
		}
		err := s.AddTraveler(traveler.New(id, req.Kind, req.Description))
		return addTravelerResponse{ID: id, Err: err}, nil
	}
}

type updateTravelerRequest struct {
	ID          traveler.ID
	Kind        traveler.Kind
	Description string
}

type updateTravelerResponse struct {
	Err error `json:"error,omitempty"`
}

func (r updateTravelerResponse) error() error { return r.Err }

func makeUpdateTravelerEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(updateTravelerRequest)
		err := s.UpdateTraveler(traveler.New(req.ID, req.Kind, req.Description))
		return updateTravelerResponse{Err: err}, nil
	}
}

type deleteTravelerRequest struct {
	ID traveler.ID
}

type deleteTravelerResponse struct {
	Err error `json:"error,omitempty"`
}

func (r deleteTravelerResponse) error() error { return r.Err }

func makeDeleteTravelerEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(deleteTravelerRequest)
		return deleteTravelerResponse{Err: s.DeleteTraveler(req.ID)}, nil
	}
}

type listTravelersRequest struct{}

type listTravelersResponse struct {
	Travelers []*traveler.Entity `json:"travelers,omitempty"`
	Err       error              `json:"error,omitempty"`
}

func (r listTravelersResponse) error() error { return r.Err }

func makeListTravelersEndpoint(s Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(listTravelersRequest)
		travelers, err := s.Travelers()
		return listTravelersResponse{Travelers: travelers, Err: err}, nil
	}
}

// Set collects all of the endpoints that compose the catalog service.
type Set struct {
	AddFerryEndpoint       endpoint.Endpoint
	FindFerryEndpoint      endpoint.Endpoint
	ListFerriesEndpoint    endpoint.Endpoint
	DeleteFerryEndpoint    endpoint.Endpoint
	UpdateCapacityEndpoint endpoint.Endpoint
	AddRouteEndpoint       endpoint.Endpoint
	ListRoutesEndpoint     endpoint.Endpoint
	DeleteRouteEndpoint    endpoint.Endpoint
	UpdatePriceEndpoint    endpoint.Endpoint
	ListHarboursEndpoint   endpoint.Endpoint
	AddTravelerEndpoint    endpoint.Endpoint
	UpdateTravelerEndpoint endpoint.Endpoint
	DeleteTravelerEndpoint endpoint.Endpoint
	ListTravelersEndpoint  endpoint.Endpoint
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
		AddFerryEndpoint:       wrap("AddFerry", makeAddFerryEndpoint(svc)),
		FindFerryEndpoint:      wrap("FindFerry", makeFindFerryEndpoint(svc)),
		ListFerriesEndpoint:    wrap("Ferries", makeListFerriesEndpoint(svc)),
		DeleteFerryEndpoint:    wrap("DeleteFerry", makeDeleteFerryEndpoint(svc)),
		UpdateCapacityEndpoint: wrap("UpdateCapacity", makeUpdateCapacityEndpoint(svc)),
		AddRouteEndpoint:       wrap("AddRoute", makeAddRouteEndpoint(svc)),
		ListRoutesEndpoint:     wrap("Routes", makeListRoutesEndpoint(svc)),
		DeleteRouteEndpoint:    wrap("DeleteRoute", makeDeleteRouteEndpoint(svc)),
		UpdatePriceEndpoint:    wrap("UpdatePrice", makeUpdatePriceEndpoint(svc)),
		ListHarboursEndpoint:   wrap("Harbours", makeListHarboursEndpoint(svc)),
		AddTravelerEndpoint:    wrap("AddTraveler", makeAddTravelerEndpoint(svc)),
		UpdateTravelerEndpoint: wrap("UpdateTraveler", makeUpdateTravelerEndpoint(svc)),
		DeleteTravelerEndpoint: wrap("DeleteTraveler", makeDeleteTravelerEndpoint(svc)),
		ListTravelersEndpoint:  wrap("Travelers", makeListTravelersEndpoint(svc)),
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
