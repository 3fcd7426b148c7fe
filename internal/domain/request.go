package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusRejected  RequestStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusFulfilled || s == RequestStatusRejected
}

// Recipient is the person a request is made for. It is created together with
// its request and never listed or updated on its own.
type Recipient struct {
	ID        int64
	Name      string
	Email     string
	Contact   string
	BloodType string
}

// Request asks for a volume of one blood type on behalf of a recipient.
type Request struct {
	ID          int64
	RecipientID int64
	Date        time.Time
	BloodType   string
	Volume      int
	Status      RequestStatus
	// Recipient is populated by listings.
	Recipient *Recipient
}
