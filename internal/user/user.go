package user

import (
	"context"

	datamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/user"
)

// Repository defines the data access methods for users and groups.
type Repository interface {
	Create(ctx context.Context, u *datamodel.User) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	GetByID(ctx context.Context, id int64) (*datamodel.User, error)
	GetGroup(ctx context.Context, id int64) (*datamodel.Group, error)
	ListGroupsExcept(ctx context.Context, groupID int64) ([]datamodel.Group, error)
}

// Profile is the authenticated caller's own account view.
type Profile struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	GroupID      int64  `json:"group_id"`
	GroupName    string `json:"group_name"`
	IsGroupAdmin bool   `json:"is_group_admin"`
	IsAdminGroup bool   `json:"is_admin_group"`
}

// GroupOption is one selectable destination group.
type GroupOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
