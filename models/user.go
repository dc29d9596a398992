// models/user.go
package models

import "time"

const (
	RoleHost      = "host"
	RoleNGO       = "ngo"
	RoleVolunteer = "volunteer"
)

// ValidRole reports whether role is one of the three dashboard roles.
func ValidRole(role string) bool {
	switch role {
	case RoleHost, RoleNGO, RoleVolunteer:
		return true
	}
	return false
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Role      string    `json:"role" gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `json:"created_at"`
}
