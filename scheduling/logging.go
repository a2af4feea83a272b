package scheduling

import (
	"time"

	"github.com/go-kit/kit/log"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/schedule"
)

type loggingService struct {
	logger log.Logger
	Service
}

// NewLoggingService creates a new instance of the logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{logger, s}
}

func (s *loggingService) AddSchedule(sched *schedule.Schedule) (err error) {
	var id schedule.ID
	var r route.ID
	var f ferry.ID
	if sched != nil {
		id, r, f = sched.ID, sched.Route, sched.Ferry
	}
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "add_schedule",
			"schedule_id", id,
			"route_id", r,
			"ferry_id", f,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.AddSchedule(sched)
}

func (s *loggingService) UpdateSchedule(sched *schedule.Schedule) (updated *schedule.Schedule, err error) {
	var id schedule.ID
	if sched != nil {
		id = sched.ID
	}
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "update_schedule",
			"schedule_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.UpdateSchedule(sched)
}

func (s *loggingService) DeleteSchedule(id schedule.ID) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "delete_schedule",
			"schedule_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.DeleteSchedule(id)
}

func (s *loggingService) Schedules() ([]*schedule.Schedule, error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "list_schedules",
			"took", time.Since(begin),
		)
	}(time.Now())
	return s.Service.Schedules()
}

func (s *loggingService) SchedulesForDate(date time.Time) (schedules []*schedule.Schedule, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "schedules_for_date",
			"date", date.Format("2006-01-02"),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.SchedulesForDate(date)
}

func (s *loggingService) Materialize(id schedule.ID, date time.Time) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "materialize",
			"schedule_id", id,
			"date", date.Format("2006-01-02"),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.Materialize(id, date)
}

func (s *loggingService) CreateAdHoc(f ferry.ID, r route.ID, departs time.Time, crossing time.Duration) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "create_ad_hoc",
			"ferry_id", f,
			"route_id", r,
			"departs", departs,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.CreateAdHoc(f, r, departs, crossing)
}

func (s *loggingService) FindDeparture(id departure.ID) (d *departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "find_departure",
			"departure_id", id,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.FindDeparture(id)
}

func (s *loggingService) DeparturesForDate(date time.Time) (departures []*departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "departures_for_date",
			"date", date.Format("2006-01-02"),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.DeparturesForDate(date)
}

func (s *loggingService) SailingsFor(f ferry.ID, date time.Time) (departures []*departure.Departure, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "sailings_for",
			"ferry_id", f,
			"date", date.Format("2006-01-02"),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.Service.SailingsFor(f, date)
}
