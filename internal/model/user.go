// Package model contains the GORM models and the DTOs built from them.
package model

import "time"

// Role values stored in User.Role.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an account record extended with the per-user simulation settings.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Role     string `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	// IsSimulationEnabled opts the user into the background usage simulator.
	IsSimulationEnabled bool `gorm:"not null;default:false;index" json:"isSimulationEnabled"`
	// SelectedSimulationInterval is the user's tick interval in seconds.
	SelectedSimulationInterval int       `gorm:"not null;default:0" json:"selectedSimulationInterval"`
	CreatedAt                  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName pins the table name.
func (User) TableName() string {
	return "users"
}
