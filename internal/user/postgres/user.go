package postgres

import (
	"context"

	"gorm.io/gorm"

	errors "github.com/haddadrachelle2-png/testdoc/internal"
	datamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/user"
	"github.com/haddadrachelle2-png/testdoc/internal/user"
)

// UserRepository implements the user.Repository interface using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *datamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&datamodel.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*datamodel.User, error) {
	var u datamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetGroup(ctx context.Context, id int64) (*datamodel.Group, error) {
	var g datamodel.Group
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *UserRepository) ListGroupsExcept(ctx context.Context, groupID int64) ([]datamodel.Group, error) {
	var groups []datamodel.Group
	err := r.db.WithContext(ctx).
		Where("id <> ?", groupID).
		Order("name").
		Find(&groups).Error
	return groups, err
}
