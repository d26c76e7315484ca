package postgres

import (
	"errors"

	"gorm.io/gorm"

	internal "github.com/haddadrachelle2-png/testdoc/internal"
	userDatamodel "github.com/haddadrachelle2-png/testdoc/internal/core/datamodel/user"
)

// Repository resolves users and groups for authentication.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByUsername(username string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetGroup(groupID int64) (*userDatamodel.Group, error) {
	var group userDatamodel.Group
	err := r.db.Where("id = ?", groupID).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &group, nil
}
