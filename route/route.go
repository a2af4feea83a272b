package route

import (
	"errors"

	"github.com/soundline/ferryops/harbour"
)

// ID uniquely identifies a route
type ID string

// Route connects an origin harbour to a destination harbour at a base price
type Route struct {
	ID          ID
	Origin      harbour.Code
	Destination harbour.Code
	BasePrice   float64
}

// ErrUnknown is used when a route can't be found
var ErrUnknown = errors.New("unknown route")

// ErrSameHarbour is used when a route would start and end at the same harbour
var ErrSameHarbour = errors.New("origin and destination harbour must differ")

// ErrNegativePrice is used when a route price would go below zero
var ErrNegativePrice = errors.New("base price must not be negative")

// New creates a new route between two distinct harbours
func New(id ID, origin, destination harbour.Code, basePrice float64) (*Route, error) {
	if origin == destination {
		return nil, ErrSameHarbour
	}
	if basePrice < 0 {
		return nil, ErrNegativePrice
	}
	return &Route{ID: id, Origin: origin, Destination: destination, BasePrice: basePrice}, nil
}

// Repository provides access to a route store
type Repository interface {
	Store(*Route) error
	Find(ID) (*Route, error)
	FindAll() ([]*Route, error)
	Delete(ID) error
}
