package user

// User is the persisted row for the users table. Rows are immutable after
// registration except for password rotation, which is out of scope.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	GroupID      int64  `json:"group_id" gorm:"column:group_id;not null"`
	IsGroupAdmin bool   `json:"is_group_admin" gorm:"column:is_group_admin;default:false"`
}

func (User) TableName() string {
	return "users"
}

// Group is static reference data. The admin group (is_admin_group) triages
// all inbound sent documents before they become visible to other groups.
type Group struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"not null"`
	IsAdminGroup  bool   `json:"is_admin_group" gorm:"column:is_admin_group;default:false"`
	IsSystemAdmin bool   `json:"is_system_admin" gorm:"column:is_system_admin;default:false"`
}

func (Group) TableName() string {
	return "groups"
}
