package ferry

import "errors"

// ID uniquely identifies a ferry
type ID string

// Status describes whether a ferry is in service
type Status int

// valid ferry statuses
const (
	Active Status = iota
	Retired
)

func (s Status) String() string {
	switch s {
	case Active:
		return "Active"
	case Retired:
		return "Retired"
	}
	return ""
}

// Ferry is a vessel with a fixed capacity for traveling entities
type Ferry struct {
	ID       ID
	Name     string
	Capacity int
	Status   Status
}

// New creates a new active ferry
func New(id ID, name string, capacity int) *Ferry {
	return &Ferry{ID: id, Name: name, Capacity: capacity, Status: Active}
}

// ErrUnknown is used when a ferry can't be found
var ErrUnknown = errors.New("unknown ferry")

// Repository provides access to a ferry store
type Repository interface {
	Store(*Ferry) error
	Find(ID) (*Ferry, error)
	FindAll() ([]*Ferry, error)
	Delete(ID) error
}
