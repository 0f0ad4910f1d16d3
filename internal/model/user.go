package model

import "time"

// DefaultRating is assigned to users and transports until they receive
// their first rating submission.  The aggregate is the arithmetic mean
// of all submitted values once at least one exists.
const DefaultRating = 50.0

// User holds the fields shared by clients and owners.  It is embedded by
// Client and Owner; the store never holds a bare User.  The email is the
// identity key on both sides of the marketplace.
//
// Fields:
//  Name          – display name.
//  NIF           – tax identification number.
//  Email         – unique identity key.
//  Address       – postal address.
//  PasswordHash  – bcrypt hash of the account password.
//  CreatedAt     – account creation timestamp.
//  Rating        – aggregate rating (DefaultRating until rated).
//  Ratings       – every rating value received, in submission order.
//  Rentals       – completed rentals, in confirmation order.
//  Notifications – pending and resolved notifications; resolved entries
//                  are retained for history display.
type User struct {
	Name          string         `json:"name"`
	NIF           int            `json:"nif"`
	Email         string         `json:"email"`
	Address       string         `json:"address"`
	PasswordHash  string         `json:"password_hash"`
	CreatedAt     time.Time      `json:"created_at"`
	Rating        float64        `json:"rating"`
	Ratings       []float64      `json:"ratings"`
	Rentals       []Rental       `json:"rentals"`
	Notifications []Notification `json:"notifications"`
}

// AddRating appends a rating value and recomputes the aggregate mean.
func (u *User) AddRating(v float64) {
	u.Ratings = append(u.Ratings, v)
	u.Rating = mean(u.Ratings)
}

// AddRental appends a completed rental to the user's history.
func (u *User) AddRental(r Rental) {
	u.Rentals = append(u.Rentals, r)
}

// AddNotification appends a notification to the user's pending list.
func (u *User) AddNotification(n Notification) {
	u.Notifications = append(u.Notifications, n)
}

// PerformedRents returns how many rentals the user has completed.
func (u *User) PerformedRents() int {
	return len(u.Rentals)
}

// TravelledKms sums the straight-line distance of every completed rental.
func (u *User) TravelledKms() float64 {
	var total float64
	for _, r := range u.Rentals {
		total += r.Distance()
	}
	return total
}

func (u *User) cloneInto(dst *User) {
	*dst = *u
	dst.Ratings = append([]float64(nil), u.Ratings...)
	dst.Rentals = append([]Rental(nil), u.Rentals...)
	dst.Notifications = make([]Notification, len(u.Notifications))
	for i := range u.Notifications {
		dst.Notifications[i] = u.Notifications[i].Clone()
	}
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return DefaultRating
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Client is a renting user.  Clients carry a current position, updated
// to the trip destination whenever one of their rent requests is
// accepted.
type Client struct {
	User
	Position Point `json:"position"`
}

// Clone returns a deep copy of the client.  Mutating the copy never
// affects the stored entity.
func (c *Client) Clone() *Client {
	out := &Client{Position: c.Position}
	c.cloneInto(&out.User)
	return out
}

// DistanceTo returns the distance between the client and a transport.
func (c *Client) DistanceTo(t *Transport) float64 {
	return c.Position.Distance(t.Position)
}

// Owner is a user who lists transports for rent and decides on incoming
// rent requests.  Owners add no fields beyond the shared user ones; the
// back-reference from transports is by owner NIF and email.
type Owner struct {
	User
}

// Clone returns a deep copy of the owner.
func (o *Owner) Clone() *Owner {
	out := &Owner{}
	o.cloneInto(&out.User)
	return out
}
