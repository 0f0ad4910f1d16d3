package model

import "time"

// Rental records a single completed, priced trip.  A rental is created
// only when an owner accepts a rent request; the same record is then
// appended to the histories of the client, the owner and the transport.
// After creation a rental never changes except for its price, which the
// bulk importer may adjust before the record is locked into the
// histories.
//
// Fields:
//  ClientNIF   – tax id of the renting client.
//  ClientEmail – email of the renting client.
//  Time        – when the rental was confirmed.
//  Price       – final price of the trip.
//  Origin      – the transport's position at acceptance, the point the
//                price is measured from.
//  Destination – where the client was driven to.
//  Mode        – payment/engine mode tag carried from the request.
//  Preference  – selection preference tag (e.g. Cheapest, Closest).
type Rental struct {
	ClientNIF   int       `json:"client_nif"`
	ClientEmail string    `json:"client_email"`
	Time        time.Time `json:"time"`
	Price       float64   `json:"price"`
	Origin      Point     `json:"origin"`
	Destination Point     `json:"destination"`
	Mode        string    `json:"mode"`
	Preference  string    `json:"preference"`
}

// Distance returns the straight-line length of the rented trip.
func (r Rental) Distance() float64 {
	return r.Origin.Distance(r.Destination)
}
