package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	adminapp "staybook/internal/app/handlers/admin"
	"staybook/internal/app/queries"
)

type AdminHTTP interface {
	Users(c *gin.Context)
	Listings(c *gin.Context)
}

type AdminHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h AdminHandler) Users(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	query := adminapp.ListUsersQuery{
		Query:  c.Query("q"),
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	result, err := queries.Ask[adminapp.ListUsersQuery, dto.UserCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) Listings(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	query := adminapp.ListAllListingsQuery{
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
	}
	result, err := queries.Ask[adminapp.ListAllListingsQuery, dto.AdminListingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondFault(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AdminHTTP = AdminHandler{}
