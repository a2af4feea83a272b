package harbour

import "errors"

// Code uniquely identifies a harbour
type Code string

// Harbour represents a harbour a route can connect
type Harbour struct {
	Code Code
	Name string
}

// ErrUnknown is used when a harbour can't be found
var ErrUnknown = errors.New("unknown harbour")

// Repository represents a harbour store
type Repository interface {
	Find(Code) (*Harbour, error)
	FindAll() ([]*Harbour, error)
}
