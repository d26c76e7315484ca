package postgres

import (
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetPagingNumber reads the single-row config table.
func (r *SettingsRepository) GetPagingNumber() (int, error) {
	var pagingNb int
	row := r.db.Raw("SELECT paging_nb FROM config").Row()
	if err := row.Scan(&pagingNb); err != nil {
		return 0, err
	}
	return pagingNb, nil
}
