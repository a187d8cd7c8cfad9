package model

import "time"

// Home is a dwelling owned by exactly one user.
type Home struct {
	ID              uint   `gorm:"primaryKey" json:"homeId"`
	UserID          uint   `gorm:"not null;index" json:"userId"`
	User            *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	HouseName       string `gorm:"type:varchar(100);not null" json:"houseName"`
	Size            int    `gorm:"not null" json:"size"` // floor area in m²
	HeatingType     string `gorm:"type:varchar(50)" json:"heatingType"`
	BuildingType    string `gorm:"type:varchar(50)" json:"buildingType"`
	InsulationLevel string `gorm:"type:varchar(50)" json:"insulationLevel"`
	YearBuilt       *int   `json:"yearBuilt"`
	Description     string `gorm:"type:varchar(2000)" json:"description"`
	Address         string `gorm:"type:varchar(200)" json:"address"`
	Location        string `gorm:"type:varchar(100)" json:"location"`
	// Version backs optimistic concurrency on edits.
	Version      uint      `gorm:"not null;default:1" json:"-"`
	LastModified time.Time `gorm:"autoUpdateTime" json:"lastModified"`
}

// TableName pins the table name.
func (Home) TableName() string {
	return "homes"
}
