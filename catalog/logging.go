package catalog

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/harbour"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/traveler"
)

type loggingService struct {
	logger log.Logger
	Service
}

// NewLoggingService creates a new instance of the logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{logger, s}
}

func (s *loggingService) AddFerry(f *ferry.Ferry) (err error) {
	var id ferry.ID
	var capacity int
	if f != nil {
		id, capacity = f.ID, f.Capacity
	}
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "add_ferry",
			"ferry_id", id,
			"capacity", capacity,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.AddFerry(f)
}

func (s *loggingService) FindFerry(id ferry.ID) (f *ferry.Ferry, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "find_ferry",
			"ferry_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.FindFerry(id)
}

func (s *loggingService) Ferries() ([]*ferry.Ferry, error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "list_ferries",
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.Service.Ferries()
}

func (s *loggingService) DeleteFerry(id ferry.ID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "delete_ferry",
			"ferry_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.DeleteFerry(id)
}

func (s *loggingService) UpdateCapacity(id ferry.ID, capacity int) (f *ferry.Ferry, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_capacity",
			"ferry_id", id,
			"capacity", capacity,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdateCapacity(id, capacity)
}

func (s *loggingService) AddRoute(id route.ID, origin, destination harbour.Code, basePrice float64) (r *route.Route, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "add_route",
			"route_id", id,
			"origin", origin,
			"destination", destination,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.AddRoute(id, origin, destination, basePrice)
}

func (s *loggingService) Routes() ([]*route.Route, error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "list_routes",
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.Service.Routes()
}

func (s *loggingService) DeleteRoute(id route.ID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "delete_route",
			"route_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.DeleteRoute(id)
}

func (s *loggingService) UpdatePrice(id route.ID, price float64) (r *route.Route, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_price",
			"route_id", id,
			"price", price,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdatePrice(id, price)
}

func (s *loggingService) AddTraveler(e *traveler.Entity) (err error) {
	var id traveler.ID
	var kind traveler.Kind
	if e != nil {
		id, kind = e.ID, e.Kind
	}
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "add_traveler",
			"traveler_id", id,
			"kind", kind,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.AddTraveler(e)
}

func (s *loggingService) UpdateTraveler(e *traveler.Entity) (err error) {
	var id traveler.ID
	if e != nil {
		id = e.ID
	}
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_traveler",
			"traveler_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdateTraveler(e)
}

func (s *loggingService) DeleteTraveler(id traveler.ID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "delete_traveler",
			"traveler_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.DeleteTraveler(id)
}
