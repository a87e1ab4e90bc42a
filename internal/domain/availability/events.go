package availability

import (
	"time"

	"staybook/internal/domain/listings"
	"staybook/internal/domain/shared/daterange"
)

type DateFlagged struct {
	ListingID listings.ListingID
	Date      time.Time
	Available bool
	At        time.Time
}

func (e DateFlagged) EventName() string     { return "availability.date_flagged" }
func (e DateFlagged) AggregateID() string   { return string(e.ListingID) }
func (e DateFlagged) OccurredAt() time.Time { return e.At }

type RangeBlocked struct {
	ListingID listings.ListingID
	Range     daterange.DateRange
	At        time.Time
}

func (e RangeBlocked) EventName() string     { return "availability.range_blocked" }
func (e RangeBlocked) AggregateID() string   { return string(e.ListingID) }
func (e RangeBlocked) OccurredAt() time.Time { return e.At }
