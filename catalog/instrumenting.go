package catalog

import (
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/traveler"
)

type instrumentingService struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	Service
}

// NewInstrumentingService returns an instance of an instrumenting Service.
func NewInstrumentingService(counter metrics.Counter, latency metrics.Histogram, s Service) Service {
	return &instrumentingService{
		requestCount:   counter,
		requestLatency: latency,
		Service:        s,
	}
}

func (s *instrumentingService) instrument(method string, begin time.Time) {
	s.requestCount.With("method", method).Add(1)
	s.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (s *instrumentingService) AddFerry(f *ferry.Ferry) error {
	defer s.instrument("add_ferry", time.Now())
	return s.Service.AddFerry(f)
}

func (s *instrumentingService) FindFerry(id ferry.ID) (*ferry.Ferry, error) {
	defer s.instrument("find_ferry", time.Now())
	return s.Service.FindFerry(id)
}

func (s *instrumentingService) Ferries() ([]*ferry.Ferry, error) {
	defer s.instrument("list_ferries", time.Now())
	return s.Service.Ferries()
}

func (s *instrumentingService) DeleteFerry(id ferry.ID) error {
	defer s.instrument("delete_ferry", time.Now())
	return s.Service.DeleteFerry(id)
}

func (s *instrumentingService) UpdateCapacity(id ferry.ID, capacity int) (*ferry.Ferry, error) {
	defer s.instrument("update_capacity", time.Now())
	return s.Service.UpdateCapacity(id, capacity)
}

func (s *instrumentingService) AddRoute(id route.ID, origin, destination harbour.Code, basePrice float64) (*route.Route, error) {
	defer s.instrument("add_route", time.Now())
	return s.Service.AddRoute(id, origin, destination, basePrice)
}

func (s *instrumentingService) Routes() ([]*route.Route, error) {
	defer s.instrument("list_routes", time.Now())
	return s.Service.Routes()
}

func (s *instrumentingService) DeleteRoute(id route.ID) error {
	defer s.instrument("delete_route", time.Now())
	return s.Service.DeleteRoute(id)
}

func (s *instrumentingService) UpdatePrice(id route.ID, price float64) (*route.Route, error) {
	defer s.instrument("update_price", time.Now())
	return s.Service.UpdatePrice(id, price)
}

func (s *instrumentingService) Harbours() ([]*harbour.Harbour, error) {
	defer s.instrument("list_harbours", time.Now())
	return s.Service.Harbours()
}

func (s *instrumentingService) AddTraveler(e *traveler.Entity) error {
	defer s.instrument("add_traveler", time.Now())
	return s.Service.AddTraveler(e)
}

func (s *instrumentingService) UpdateTraveler(e *traveler.Entity) error {
	defer s.instrument("update_traveler", time.Now())
	return s.Service.UpdateTraveler(e)
}

func (s *instrumentingService) DeleteTraveler(id traveler.ID) error {
	defer s.instrument("delete_traveler", time.Now())
	return s.Service.DeleteTraveler(id)
}

func (s *instrumentingService) Travelers() ([]*traveler.Entity, error) {
	defer s.instrument("list_travelers", time.Now())
	return s.Service.Travelers()
}
