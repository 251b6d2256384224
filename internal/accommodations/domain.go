// Package accommodations implements the lodging catalog service.
package accommodations

import (
	"github.com/wayfarer-travel/wayfarer/internal/crud"
)

// Kind classifies a lodging.
type Kind string

const (
	KindHotel      Kind = "HOTEL"
	KindHostel     Kind = "HOSTEL"
	KindGuesthouse Kind = "GUESTHOUSE"
	KindApartment  Kind = "APARTMENT"
	KindCamping    Kind = "CAMPING"
)

// Accommodation is a lodging listed on the platform.
type Accommodation struct {
	crud.Record
	Name          string
	Slug          string
	Kind          Kind
	Destination   string
	Description   string
	PricePerNight float64
	Rating        int
	Published     bool
}

// EntitySlug implements crud.Entity.
func (a *Accommodation) EntitySlug() string { return a.Slug }
