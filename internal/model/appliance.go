package model

import "time"

// Appliance is a device installed in a Home.
type Appliance struct {
	ID               uint       `gorm:"primaryKey" json:"applianceId"`
	HomeID           uint       `gorm:"not null;index" json:"homeId"`
	Home             *Home      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name             string     `gorm:"type:varchar(100);not null" json:"name"`
	Brand            string     `gorm:"type:varchar(100)" json:"brand"`
	PowerRating      string     `gorm:"type:varchar(50)" json:"powerRating"` // free text, e.g. "1500W"
	EfficiencyRating string     `gorm:"type:varchar(20)" json:"efficiencyRating"`
	Notes            string     `gorm:"type:varchar(500)" json:"notes"`
	PurchaseDate     *time.Time `json:"purchaseDate"`
	IconClass        string     `gorm:"type:varchar(50)" json:"iconClass"`
	Version          uint       `gorm:"not null;default:1" json:"-"`
	LastModified     time.Time  `gorm:"autoUpdateTime" json:"lastModified"`
}

// TableName pins the table name.
func (Appliance) TableName() string {
	return "appliances"
}

// HomeName returns the owning home's name, or "N/A" when it was not loaded.
func (a *Appliance) HomeName() string {
	if a.Home == nil {
		return "N/A"
	}
	return a.Home.HouseName
}
