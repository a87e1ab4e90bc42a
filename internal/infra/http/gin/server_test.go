package ginserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	adminapp "staybook/internal/app/handlers/admin"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	listingapp "staybook/internal/app/handlers/listings"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	authsvc "staybook/internal/app/services/auth"
	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

// newTestRouter wires the full API surface against the in-memory stores, the
// same shape the binary uses when STORAGE_MODE=memory.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uowFactory := memory.Factory{
		ListingsRepo:     memory.NewListingRepository(),
		BookingRepo:      memory.NewBookingRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
	}
	users := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	outboxStore := memory.NewOutbox()
	idStore := memory.NewIdempotencyStore()

	authService := &authsvc.Service{
		Users:     users,
		Sessions:  sessions,
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}

	encoder := appoutbox.JSONEventEncoder{}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.ApproveBookingCommand{}.Key(), &bookingapp.ApproveBookingHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, bookingapp.DeclineBookingCommand{}.Key(), &bookingapp.DeclineBookingHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, availabilityapp.SetAvailabilityCommand{}.Key(), &availabilityapp.SetAvailabilityHandler{Outbox: outboxStore, Encoder: encoder})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, listingapp.ListHostListingsQuery{}.Key(), &listingapp.ListHostListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, listingapp.SearchListingsQuery{}.Key(), &listingapp.SearchListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, listingapp.ListingDetailsQuery{}.Key(), &listingapp.ListingDetailsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListHostBookingsQuery{}.Key(), &bookingapp.ListHostBookingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(), &availabilityapp.GetCalendarHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, adminapp.ListUsersQuery{}.Key(), &adminapp.ListUsersHandler{Users: users})
	queries.RegisterHandler(queryBus, adminapp.ListAllListingsQuery{}.Key(), &adminapp.ListAllListingsHandler{UoWFactory: uowFactory, Users: users})

	commandBusMW := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusMW := middleware.ChainQueries(queryBus, middleware.QueryValidation())

	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		HostListing:    ginserver.HostListingHandler{Commands: commandBusMW, Queries: queryBusMW, Logger: logger},
		HostBooking:    ginserver.HostBookingHandler{Commands: commandBusMW, Queries: queryBusMW, Logger: logger},
		Availability:   ginserver.AvailabilityHandler{Commands: commandBusMW, Queries: queryBusMW, Logger: logger},
		Listing:        ginserver.ListingHandler{Queries: queryBusMW, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: commandBusMW, Queries: queryBusMW, Logger: logger},
		Admin:          ginserver.AdminHandler{Queries: queryBusMW, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}

	cfg := config.Config{Env: "test", HTTPAddr: ":0"}
	return ginserver.NewRouter(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{}, handlers)
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func (c client) decode(rec *httptest.ResponseRecorder, out any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (c client) register(email, name string, roles ...string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"name":     name,
		"password": "password-1",
		"roles":    roles,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	c.decode(rec, &resp)
	require.NotEmpty(c.t, resp.Token)
	return resp.Token
}

func (c client) createListing(hostToken, name, location string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/host/listings", hostToken, map[string]any{
		"name":            name,
		"description":     "A lovely place",
		"location":        location,
		"price_per_night": "150.00",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		ListingID string `json:"listing_id"`
	}
	c.decode(rec, &resp)
	require.NotEmpty(c.t, resp.ListingID)
	return resp.ListingID
}

func (c client) requestBooking(guestToken, listingID, start, end string) (string, *httptest.ResponseRecorder) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/guest/bookings", guestToken, map[string]any{
		"listing_id": listingID,
		"start_date": start,
		"end_date":   end,
	})
	if rec.Code != http.StatusCreated {
		return "", rec
	}
	var resp struct {
		BookingID string `json:"booking_id"`
		Status    string `json:"status"`
	}
	c.decode(rec, &resp)
	require.Equal(c.t, "pending", resp.Status)
	return resp.BookingID, rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	hostToken := c.register("host@example.com", "Hanna", "host")
	guestToken := c.register("guest@example.com", "Gus")
	listingID := c.createListing(hostToken, "Harbour loft", "Lisbon, Portugal")

	rec := c.do(http.MethodGet, "/api/v1/guest/listings?location=lisbon", guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var search struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	c.decode(rec, &search)
	require.Len(t, search.Items, 1)
	assert.Equal(t, listingID, search.Items[0].ID)

	bookingID, _ := c.requestBooking(guestToken, listingID, "2030-07-01", "2030-07-05")
	require.NotEmpty(t, bookingID)

	rec = c.do(http.MethodPost, "/api/v1/host/bookings/"+bookingID+"/approve", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var action struct {
		Status string `json:"status"`
	}
	c.decode(rec, &action)
	assert.Equal(t, "approved", action.Status)

	rec = c.do(http.MethodGet, "/api/v1/guest/bookings", guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
	}
	c.decode(rec, &mine)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "approved", mine.Items[0].Status)

	// The host list keeps resolved bookings visible without a status filter.
	rec = c.do(http.MethodGet, "/api/v1/host/bookings", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hostList struct {
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
	}
	c.decode(rec, &hostList)
	require.Len(t, hostList.Items, 1)
	assert.Equal(t, "approved", hostList.Items[0].Status)

	rec = c.do(http.MethodGet, "/api/v1/host/bookings?status=pending", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c.decode(rec, &hostList)
	assert.Empty(t, hostList.Items, "status filter stays opt-in")
}

func TestOverlappingApprovalConflictsOverHTTP(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	hostToken := c.register("host@example.com", "Hanna", "host")
	guestOne := c.register("one@example.com", "One")
	guestTwo := c.register("two@example.com", "Two")
	listingID := c.createListing(hostToken, "Harbour loft", "Lisbon")

	first, _ := c.requestBooking(guestOne, listingID, "2030-07-01", "2030-07-05")
	second, _ := c.requestBooking(guestTwo, listingID, "2030-07-04", "2030-07-08")

	rec := c.do(http.MethodPost, "/api/v1/host/bookings/"+first+"/approve", hostToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/host/bookings/"+second+"/approve", hostToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "booking_overlap", errorCode(t, rec))
}

func TestForeignHostCannotSeeBooking(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	hostToken := c.register("host@example.com", "Hanna", "host")
	otherHost := c.register("other@example.com", "Olga", "host")
	guestToken := c.register("guest@example.com", "Gus")
	listingID := c.createListing(hostToken, "Harbour loft", "Lisbon")

	bookingID, _ := c.requestBooking(guestToken, listingID, "2030-07-01", "2030-07-05")

	rec := c.do(http.MethodPost, "/api/v1/host/bookings/"+bookingID+"/approve", otherHost, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestRoleGating(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}
	guestToken := c.register("guest@example.com", "Gus")

	rec := c.do(http.MethodGet, "/api/v1/host/listings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/host/listings", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/admin/users", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBlockedDateRejectsBookingApproval(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	hostToken := c.register("host@example.com", "Hanna", "host")
	guestToken := c.register("guest@example.com", "Gus")
	listingID := c.createListing(hostToken, "Harbour loft", "Lisbon")

	rec := c.do(http.MethodPost, fmt.Sprintf("/api/v1/host/listings/%s/availability", listingID), hostToken, map[string]any{
		"date":      "2030-07-03",
		"available": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	bookingID, _ := c.requestBooking(guestToken, listingID, "2030-07-01", "2030-07-05")
	rec = c.do(http.MethodPost, "/api/v1/host/bookings/"+bookingID+"/approve", hostToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestInvalidRangeRejected(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	hostToken := c.register("host@example.com", "Hanna", "host")
	guestToken := c.register("guest@example.com", "Gus")
	listingID := c.createListing(hostToken, "Harbour loft", "Lisbon")

	_, rec := c.requestBooking(guestToken, listingID, "2030-07-05", "2030-07-05")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	_, rec = c.requestBooking(guestToken, listingID, "2030-07-05", "2030-07-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestIdempotentBookingRequest(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	hostToken := c.register("host@example.com", "Hanna", "host")
	guestToken := c.register("guest@example.com", "Gus")
	listingID := c.createListing(hostToken, "Harbour loft", "Lisbon")

	body := map[string]any{
		"listing_id": listingID,
		"start_date": "2030-07-01",
		"end_date":   "2030-07-05",
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/guest/bookings", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+guestToken)
		req.Header.Set("Idempotency-Key", "retry-key-1")
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := send()
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	rec := c.do(http.MethodGet, "/api/v1/guest/bookings", guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	c.decode(rec, &mine)
	assert.Len(t, mine.Items, 1, "retry with the same key creates one booking")
}

func TestHealthEndpoints(t *testing.T) {
	c := client{t: t, router: newTestRouter(t)}

	rec := c.do(http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
