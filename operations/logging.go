package operations

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
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

func (s *loggingService) Attach(id departure.ID, t traveler.ID) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "attach",
			"departure_id", id,
			"traveler_id", t,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Attach(id, t)
}

func (s *loggingService) Detach(id departure.ID, t traveler.ID) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "detach",
			"departure_id", id,
			"traveler_id", t,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Detach(id, t)
}

func (s *loggingService) UpdateDeparture(id departure.ID, attach, detach []traveler.ID) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_departure",
			"departure_id", id,
			"attach", len(attach),
			"detach", len(detach),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdateDeparture(id, attach, detach)
}

func (s *loggingService) Delay(f ferry.ID, date time.Time, seq int, minutes int) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "delay",
			"ferry_id", f,
			"date", date.Format("2006-01-02"),
			"seq", seq,
			"minutes", minutes,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Delay(f, date, seq, minutes)
}

func (s *loggingService) CancelSailings(f ferry.ID, date time.Time) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "cancel_sailings",
			"ferry_id", f,
			"date", date.Format("2006-01-02"),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.CancelSailings(f, date)
}

func (s *loggingService) CancelDeparture(id departure.ID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "cancel_departure",
			"departure_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.CancelDeparture(id)
}
