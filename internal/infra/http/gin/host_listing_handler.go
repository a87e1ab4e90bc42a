package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	listingsapp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/queries"
)

type HostListingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createListingRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	PricePerNight string `json:"price_per_night"`
}

func (h HostListingHandler) List(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	query := listingsapp.ListHostListingsQuery{HostID: principal.ID}
	result, err := queries.Ask[listingsapp.ListHostListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Create(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}
	cmd := listingsapp.CreateListingCommand{
		CommandID:       uuid.NewString(),
		HostID:          principal.ID,
		Name:            req.Name,
		Description:     req.Description,
		Location:        req.Location,
		PricePerNight:   req.PricePerNight,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[listingsapp.CreateListingCommand, *listingsapp.CreateListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) UploadPhoto(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "photo_required", "photo file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "photo_unreadable", "photo file could not be read")
		return
	}
	defer file.Close()

	listingID := c.Param("id")
	ext := strings.ToLower(path.Ext(fileHeader.Filename))
	objectKey := fmt.Sprintf("listings/%s/%s%s", listingID, uuid.NewString(), ext)

	cmd := listingsapp.UploadListingPhotoCommand{
		HostID:      principal.ID,
		ListingID:   listingID,
		ObjectKey:   objectKey,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      file,
	}
	result, err := commands.Dispatch[listingsapp.UploadListingPhotoCommand, *dto.ListingDetails](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ HostListingHTTP = HostListingHandler{}
