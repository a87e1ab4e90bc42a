package dto

import (
	"time"

	"staybook/internal/domain/availability"
)

type CalendarEntry struct {
	Date      string    `json:"date"`
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CalendarView struct {
	ListingID string          `json:"listing_id"`
	Entries   []CalendarEntry `json:"entries"`
}

const calendarDateLayout = "2006-01-02"

func MapCalendarView(cal *availability.Calendar) CalendarView {
	view := CalendarView{ListingID: string(cal.ListingID), Entries: make([]CalendarEntry, 0, len(cal.Entries))}
	for _, entry := range cal.Sorted() {
		view.Entries = append(view.Entries, CalendarEntry{
			Date:      entry.Date.Format(calendarDateLayout),
			Available: entry.Available,
			UpdatedAt: entry.UpdatedAt,
		})
	}
	return view
}
