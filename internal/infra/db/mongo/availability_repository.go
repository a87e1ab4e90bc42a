package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainlistings "staybook/internal/domain/listings"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/fault"
)

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection("agg_calendar")}
}

// Calendar loads the listing's calendar, returning a fresh one when none has
// been stored yet. The first save upserts at version zero.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, fault.Store("calendar_load", err)
	}
	return doc.toAggregate(), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	doc := newCalendarDocument(cal)
	filter := bson.M{"_id": doc.ID, "version": cal.Version}
	if cal.Version == 0 {
		filter = bson.M{"_id": doc.ID, "version": bson.M{"$in": bson.A{0, nil}}}
	}
	doc.Version = cal.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uow.ErrConcurrentUpdate
		}
		return fault.Store("calendar_save", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	cal.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Entries []entryDocument `bson:"entries"`
	Version int64           `bson:"version"`
}

type entryDocument struct {
	Date      int64 `bson:"date"`
	Available bool  `bson:"available"`
	UpdatedAt int64 `bson:"updated_at"`
}

func newCalendarDocument(cal *domainavailability.Calendar) calendarDocument {
	entries := make([]entryDocument, 0, len(cal.Entries))
	for _, entry := range cal.Sorted() {
		entries = append(entries, entryDocument{
			Date:      entry.Date.UnixMilli(),
			Available: entry.Available,
			UpdatedAt: entry.UpdatedAt.UnixMilli(),
		})
	}
	return calendarDocument{ID: string(cal.ListingID), Entries: entries, Version: cal.Version}
}

func (d calendarDocument) toAggregate() *domainavailability.Calendar {
	cal := domainavailability.NewCalendar(domainlistings.ListingID(d.ID))
	cal.Version = d.Version
	for _, entry := range d.Entries {
		day := domainrange.Day(timestampToTime(entry.Date))
		cal.Entries[day.Format("2006-01-02")] = domainavailability.Entry{
			Date:      day,
			Available: entry.Available,
			UpdatedAt: timestampToTime(entry.UpdatedAt),
		}
	}
	return cal
}
