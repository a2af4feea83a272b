package traveler

import (
	"errors"
	"strings"

	"github.com/pborman/uuid"
)

// ID uniquely identifies a traveling entity
type ID string

// Kind describes the type of a traveling entity
type Kind int

// valid traveling entity kinds
const (
	Passenger Kind = iota
	Vehicle
)

func (k Kind) String() string {
	switch k {
	case Passenger:
		return "Passenger"
	case Vehicle:
		return "Vehicle"
	}
	return ""
}

// Entity is a passenger or vehicle that can hold bookings on departures
type Entity struct {
	ID          ID
	Kind        Kind
	Description string
}

// New creates a new traveling entity
func New(id ID, kind Kind, description string) *Entity {
	return &Entity{ID: id, Kind: kind, Description: description}
}

// ErrUnknown is used when a traveling entity can't be found
var ErrUnknown = errors.New("unknown traveling entity")

// Repository provides access to a traveling entity store
type Repository interface {
	Store(*Entity) error
	Find(ID) (*Entity, error)
	FindAll() ([]*Entity, error)
	Delete(ID) error
}

// NextID generates a new traveling entity ID.
func NextID() ID {
	return ID(strings.Split(strings.ToUpper(uuid.New()), "-")[0])
}
