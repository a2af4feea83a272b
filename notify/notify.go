// Package notify delivers departure events to travelers and downstream
// systems through a watermill publisher.
package notify

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-kit/kit/log"

	"github.com/soundline/ferryops/departure"
	"github.com/soundline/ferryops/ferry"
	"github.com/soundline/ferryops/route"
	"github.com/soundline/ferryops/traveler"
)

// Topics carrying departure events.
const (
	TopicCancelled = "departure.cancelled"
	TopicDelayed   = "departure.delayed"
)

// CancellationEvent is emitted when a departure is cancelled. Released lists
// the traveling entities whose bookings were dropped.
type CancellationEvent struct {
	Departure departure.ID  `json:"departure_id"`
	Ferry     ferry.ID      `json:"ferry_id"`
	Route     route.ID      `json:"route_id"`
	Date      time.Time     `json:"date"`
	Released  []traveler.ID `json:"released,omitempty"`
}

// DelayEvent is emitted when a departure is delayed.
type DelayEvent struct {
	Departure departure.ID `json:"departure_id"`
	Ferry     ferry.ID     `json:"ferry_id"`
	Route     route.ID     `json:"route_id"`
	Date      time.Time    `json:"date"`
	Minutes   int          `json:"minutes"`
	NewTime   time.Time    `json:"new_departure_time"`
}

// Sink accepts departure events for delivery.
type Sink interface {
	DepartureCancelled(d *departure.Departure, released []traveler.ID) error
	DepartureDelayed(d *departure.Departure, minutes int) error
}

type publisher struct {
	pub message.Publisher
}

// NewPublisher wraps a watermill publisher as a Sink.
func NewPublisher(pub message.Publisher) Sink {
	return &publisher{pub: pub}
}

func (p *publisher) DepartureCancelled(d *departure.Departure, released []traveler.ID) error {
	payload, err := json.Marshal(CancellationEvent{
		Departure: d.ID,
		Ferry:     d.Ferry,
		Route:     d.Route,
		Date:      d.Date,
		Released:  released,
	})
	if err != nil {
		return err
	}
	return p.pub.Publish(TopicCancelled, message.NewMessage(watermill.NewUUID(), payload))
}

func (p *publisher) DepartureDelayed(d *departure.Departure, minutes int) error {
	payload, err := json.Marshal(DelayEvent{
		Departure: d.ID,
		Ferry:     d.Ferry,
		Route:     d.Route,
		Date:      d.Date,
		Minutes:   minutes,
		NewTime:   d.DepartureTime,
	})
	if err != nil {
		return err
	}
	return p.pub.Publish(TopicDelayed, message.NewMessage(watermill.NewUUID(), payload))
}

// NewGoChannel returns an in-process watermill pub/sub for the sink.
func NewGoChannel(logger log.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, NewLoggerAdapter(logger))
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) DepartureCancelled(*departure.Departure, []traveler.ID) error { return nil }
func (NopSink) DepartureDelayed(*departure.Departure, int) error             { return nil }
