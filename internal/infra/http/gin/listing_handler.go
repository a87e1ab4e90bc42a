package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	listingsapp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/queries"
)

type ListingHTTP interface {
	Search(c *gin.Context)
	Details(c *gin.Context)
}

type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Search(c *gin.Context) {
	if _, ok := requireRole(c, "guest"); !ok {
		return
	}
	query := listingsapp.SearchListingsQuery{
		Location: c.Query("location"),
		Limit:    intQuery(c, "limit"),
		Offset:   intQuery(c, "offset"),
	}
	result, err := queries.Ask[listingsapp.SearchListingsQuery, dto.ListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Details(c *gin.Context) {
	if _, ok := requireRole(c, "guest"); !ok {
		return
	}
	query := listingsapp.ListingDetailsQuery{ListingID: c.Param("id")}
	result, err := queries.Ask[listingsapp.ListingDetailsQuery, dto.ListingDetails](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func intQuery(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

var _ ListingHTTP = ListingHandler{}
