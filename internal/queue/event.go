// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer glue around them.
package queue

// RentalRequestedEvent is published when a client sends a rent proposal
// to an owner.  Downstream consumers can notify the owner out of band
// without querying the engine.
type RentalRequestedEvent struct {
	NotificationID uint64  `json:"notification_id"`
	ClientEmail    string  `json:"client_email"`
	OwnerEmail     string  `json:"owner_email"`
	Registration   string  `json:"registration"`
	Mode           string  `json:"mode"`
	DestinationX   float64 `json:"destination_x"`
	DestinationY   float64 `json:"destination_y"`
	QuotedPrice    float64 `json:"quoted_price"`
	ETAHours       float64 `json:"eta_hours"`
	RequestedAt    string  `json:"requested_at"`
}

// RentalConfirmedEvent is published when an owner accepts a rent
// request and the rental has been applied.  It carries enough
// information for logging and analytics without a read back into the
// store.
type RentalConfirmedEvent struct {
	NotificationID uint64  `json:"notification_id"`
	ClientEmail    string  `json:"client_email"`
	OwnerEmail     string  `json:"owner_email"`
	Registration   string  `json:"registration"`
	Price          float64 `json:"price"`
	OriginX        float64 `json:"origin_x"`
	OriginY        float64 `json:"origin_y"`
	DestinationX   float64 `json:"destination_x"`
	DestinationY   float64 `json:"destination_y"`
	ConfirmedAt    string  `json:"confirmed_at"`
}
