package models

import (
	"time"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username  string     `gorm:"column:username;unique" json:"username"`
	FirstName string     `gorm:"column:first_name" json:"first_name"`
	LastName  string     `gorm:"column:last_name" json:"last_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	IsStaff   bool       `gorm:"column:is_staff" json:"is_staff"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Organizations []Organization `gorm:"many2many:user_organizations" json:"organizations,omitempty"`
}

// Organization groups evaluators; visibility and score aggregation are both
// scoped per organization.
type Organization struct {
	OrganizationID int    `gorm:"primaryKey;column:organization_id" json:"organization_id"`
	Name           string `gorm:"column:name" json:"name"`

	// Relations
	Users []User `gorm:"many2many:user_organizations" json:"users,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Organization) TableName() string {
	return "organizations"
}

// HomeOrganization returns the user's first organization by id, or nil when
// the user belongs to none. Requires Organizations to be preloaded. The
// ordering must stay stable because visibility scoping and the
// organization-average aggregation both key off it.
func HomeOrganization(u *User) *Organization {
	if u == nil || len(u.Organizations) == 0 {
		return nil
	}
	home := &u.Organizations[0]
	for i := 1; i < len(u.Organizations); i++ {
		if u.Organizations[i].OrganizationID < home.OrganizationID {
			home = &u.Organizations[i]
		}
	}
	return home
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
