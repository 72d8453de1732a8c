package projections

import (
	"context"
	"time"

	"weekendlog/internal/domain/user"
)

// GetUserListQuery carries query parameters: who is looking at the list.
type GetUserListQuery struct {
	ViewerPSID    string
	ViewerIsAdmin bool
}

// UserCard is one rendered user row. It never carries a credential.
type UserCard struct {
	PSID      string     `json:"psId"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"isAdmin"`
	LastLogin *time.Time `json:"lastLogin"`
}

// GetUserListDeps holds dependencies for the user list projection.
type GetUserListDeps struct {
	UserStore interface {
		All(ctx context.Context) ([]user.User, error)
	}
}

// QueryGetUserList renders the management list for the given viewer:
// everyone except the viewer themselves; non-admin viewers see only
// non-admin users.
// PRE: ViewerPSID is non-empty
// POST: Returns cards in stored order, credential-free
func QueryGetUserList(ctx context.Context, query GetUserListQuery, deps GetUserListDeps) ([]UserCard, error) {
	users, err := deps.UserStore.All(ctx)
	if err != nil {
		return nil, err
	}

	cards := make([]UserCard, 0, len(users))
	for _, u := range users {
		if user.SamePSID(u.PSID, query.ViewerPSID) {
			continue
		}
		if !query.ViewerIsAdmin && u.IsAdmin {
			continue
		}
		cards = append(cards, UserCard{
			PSID:      u.PSID,
			Name:      u.Name,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			LastLogin: u.LastLogin,
		})
	}
	return cards, nil
}
