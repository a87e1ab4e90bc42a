// Package policy holds the access predicates shared by every use case. The
// functions are pure: callers fetch the aggregates first, then ask.
package policy

import (
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
	"staybook/internal/domain/user"
)

func IsOwnerOfListing(userID string, listing *listings.Listing) bool {
	if listing == nil || userID == "" {
		return false
	}
	return listing.Host == listings.HostID(userID)
}

func IsOwnerOfBooking(userID string, b *booking.Booking) bool {
	if b == nil || userID == "" {
		return false
	}
	return b.GuestID == userID
}

func HasRole(roles user.RoleSet, role user.Role) bool {
	return roles.Has(role)
}
