package model

import "time"

// NotificationStatus tracks the single allowed transition of a
// notification: Unevaluated -> Accepted or Unevaluated -> Declined.
// Accepted and Declined are terminal.
type NotificationStatus int

const (
	Declined    NotificationStatus = -1
	Unevaluated NotificationStatus = 0
	Accepted    NotificationStatus = 1
)

// NotificationKind enumerates the closed set of notification payloads.
type NotificationKind string

const (
	// RentKind asks an owner to approve or decline a rent request.
	RentKind NotificationKind = "RENT"
	// RatingKind asks a user to rate a client or a transport once the
	// scheduled trip time has elapsed.
	RatingKind NotificationKind = "RATING"
)

// RatingTarget says what a rating notification is about.
type RatingTarget string

const (
	RateClient    RatingTarget = "CLIENT"
	RateTransport RatingTarget = "TRANSPORT"
)

// Notification is an asynchronous request awaiting a human decision.
// The payload dispatches on Kind; rent fields are set only for RentKind
// and rating fields only for RatingKind.  Notifications are retained
// after resolution so histories stay auditable.
//
// Common fields:
//  ID     – store-assigned sequence number, unique per store.
//  Kind   – RentKind or RatingKind.
//  Status – Unevaluated until resolved exactly once.
//
// Rent fields:
//  ClientNIF    – tax id of the requesting client.
//  ClientEmail  – email of the requesting client.
//  Registration – target transport.
//  Mode         – selection mode tag carried into the rental record.
//  Destination  – requested drop-off point.
//  Price        – price quoted at proposal time.
//  ETAHours     – estimated time of arrival including the delay
//                 adjustment, in hours.
//
// Rating fields:
//  TargetID    – email of the client or registration of the transport.
//  Target      – RateClient or RateTransport.
//  EvaluableAt – earliest moment the rating may be submitted
//                (request time plus estimated travel time).
type Notification struct {
	ID     uint64             `json:"id"`
	Kind   NotificationKind   `json:"kind"`
	Status NotificationStatus `json:"status"`

	ClientNIF    int     `json:"client_nif,omitempty"`
	ClientEmail  string  `json:"client_email,omitempty"`
	Registration string  `json:"registration,omitempty"`
	Mode         string  `json:"mode,omitempty"`
	Destination  Point   `json:"destination"`
	Price        float64 `json:"price,omitempty"`
	ETAHours     float64 `json:"eta_hours,omitempty"`

	TargetID    string       `json:"target_id,omitempty"`
	Target      RatingTarget `json:"target,omitempty"`
	EvaluableAt time.Time    `json:"evaluable_at"`
}

// NewRentNotification builds an unevaluated rent request notification.
func NewRentNotification(clientNIF int, clientEmail, registration, mode string, destination Point, price, etaHours float64) Notification {
	return Notification{
		Kind:         RentKind,
		Status:       Unevaluated,
		ClientNIF:    clientNIF,
		ClientEmail:  clientEmail,
		Registration: registration,
		Mode:         mode,
		Destination:  destination,
		Price:        price,
		ETAHours:     etaHours,
	}
}

// NewRatingNotification builds an unevaluated rating request scheduled
// to become evaluable after the estimated travel time has passed.
func NewRatingNotification(targetID string, target RatingTarget, etaHours float64, now time.Time) Notification {
	return Notification{
		Kind:        RatingKind,
		Status:      Unevaluated,
		TargetID:    targetID,
		Target:      target,
		EvaluableAt: now.Add(time.Duration(etaHours) * time.Hour),
	}
}

// Clone returns a copy of the notification.
func (n Notification) Clone() Notification {
	return n
}

// IsPending reports whether the notification still awaits a decision.
func (n Notification) IsPending() bool {
	return n.Status == Unevaluated
}

// IsTerminal reports whether the notification has reached a final state.
func (n Notification) IsTerminal() bool {
	return n.Status != Unevaluated
}
