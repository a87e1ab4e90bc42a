package admin

import (
	"context"
	"log/slog"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/domain/user"
)

const listUsersKey = "admin.users.list"

type ListUsersQuery struct {
	Query  string
	Limit  int
	Offset int
}

func (q ListUsersQuery) Key() string { return listUsersKey }

type ListUsersHandler struct {
	Users  user.Repository
	Logger *slog.Logger
}

func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) (dto.UserCollection, error) {
	items, total, err := h.Users.List(ctx, user.ListParams{
		Query:  q.Query,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return dto.UserCollection{}, err
	}

	if h.Logger != nil {
		h.Logger.Debug("users listed", "count", len(items), "total", total)
	}
	return dto.MapUserCollection(items, total), nil
}

var _ queries.Handler[ListUsersQuery, dto.UserCollection] = (*ListUsersHandler)(nil)
