package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainlistings "staybook/internal/domain/listings"
	"staybook/internal/domain/policy"
	"staybook/internal/infra/storage/s3"
)

const uploadListingPhotoKey = "host.listings.photos.upload"

type UploadListingPhotoCommand struct {
	HostID      string
	ListingID   string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadListingPhotoCommand) Key() string { return uploadListingPhotoKey }

type UploadListingPhotoHandler struct {
	Logger   *slog.Logger
	Uploader s3.Uploader
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Now      func() time.Time
}

func (h *UploadListingPhotoHandler) Handle(ctx context.Context, cmd UploadListingPhotoCommand) (*dto.ListingDetails, error) {
	if h.Uploader == nil {
		return nil, errors.New("photo uploader unavailable")
	}
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, errors.New("host id is required")
	}
	if strings.TrimSpace(cmd.ListingID) == "" {
		return nil, domainlistings.ErrNotFound
	}
	if cmd.Reader == nil {
		return nil, errors.New("photo reader is required")
	}
	if strings.TrimSpace(cmd.ObjectKey) == "" {
		return nil, errors.New("object key is required")
	}

	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !policy.IsOwnerOfListing(cmd.HostID, listing) {
		return nil, domainlistings.ErrNotFound
	}

	publicURL, err := h.Uploader.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := listing.AddPhoto(publicURL, now); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}

	pending := listing.PendingEvents()
	listing.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing photo added", "listing_id", listing.ID, "host_id", cmd.HostID, "object_key", cmd.ObjectKey)
	}

	details := dto.MapListingDetails(listing)
	return &details, nil
}

func (h *UploadListingPhotoHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[UploadListingPhotoCommand, *dto.ListingDetails] = (*UploadListingPhotoHandler)(nil)
