package listings

import "time"

type ListingCreated struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingPhotoAdded struct {
	ListingID ListingID
	URL       string
	At        time.Time
}

func (e ListingPhotoAdded) EventName() string     { return "listing.photo_added" }
func (e ListingPhotoAdded) AggregateID() string   { return string(e.ListingID) }
func (e ListingPhotoAdded) OccurredAt() time.Time { return e.At }
