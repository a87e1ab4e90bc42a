package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/shared/fault"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, fault.Store("listing_load", err)
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uow.ErrConcurrentUpdate
		}
		return fault.Store("listing_save", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return uow.ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	opts := params.Normalized()
	filter := bson.M{}
	if opts.Host != "" {
		filter["host_id"] = string(opts.Host)
	}
	if opts.Location != "" {
		filter["location_lc"] = bson.M{"$regex": regexp.QuoteMeta(opts.Location)}
	}

	order := -1
	if opts.OldestFirst {
		order = 1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: order}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fault.Store("listing_search", err)
	}
	defer cursor.Close(ctx)

	out := make([]*domainlistings.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fault.Store("listing_decode", err)
		}
		out = append(out, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, fault.Store("listing_cursor", err)
	}
	return out, nil
}

type listingDocument struct {
	ID            string   `bson:"_id"`
	HostID        string   `bson:"host_id"`
	Name          string   `bson:"name"`
	Description   string   `bson:"description"`
	Location      string   `bson:"location"`
	LocationLC    string   `bson:"location_lc"`
	PricePerNight string   `bson:"price_per_night"`
	Photos        []string `bson:"photos"`
	CreatedAt     int64    `bson:"created_at"`
	UpdatedAt     int64    `bson:"updated_at"`
	Version       int64    `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:            string(l.ID),
		HostID:        string(l.Host),
		Name:          l.Name,
		Description:   l.Description,
		Location:      l.Location,
		LocationLC:    strings.ToLower(l.Location),
		PricePerNight: l.PricePerNight.String(),
		Photos:        append([]string(nil), l.Photos...),
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
		Version:       l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	price, err := decimal.NewFromString(d.PricePerNight)
	if err != nil {
		price = decimal.Zero
	}
	return &domainlistings.Listing{
		ID:            domainlistings.ListingID(d.ID),
		Host:          domainlistings.HostID(d.HostID),
		Name:          d.Name,
		Description:   d.Description,
		Location:      d.Location,
		PricePerNight: price,
		Photos:        append([]string(nil), d.Photos...),
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}
