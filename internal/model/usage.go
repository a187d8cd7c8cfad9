package model

import "time"

// UsageFrequency rates how often an appliance runs, from Rarely (1) to Always (5).
type UsageFrequency int

const (
	FrequencyRarely UsageFrequency = iota + 1
	FrequencySometimes
	FrequencyOften
	FrequencyVeryOften
	FrequencyAlways
)

var frequencyNames = map[UsageFrequency]string{
	FrequencyRarely:    "Rarely",
	FrequencySometimes: "Sometimes",
	FrequencyOften:     "Often",
	FrequencyVeryOften: "Very Often",
	FrequencyAlways:    "Always",
}

// String returns the display label, or "Unknown" outside 1..5.
func (f UsageFrequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether f is within 1..5.
func (f UsageFrequency) Valid() bool {
	return f >= FrequencyRarely && f <= FrequencyAlways
}

// UsageFrequencies lists every frequency in ascending order, for form select boxes.
func UsageFrequencies() []UsageFrequency {
	return []UsageFrequency{FrequencyRarely, FrequencySometimes, FrequencyOften, FrequencyVeryOften, FrequencyAlways}
}

// Usage is a single energy-consumption event of an appliance.
// UserID duplicates the owner reachable through Appliance.Home for cheap per-user queries.
type Usage struct {
	ID          uint       `gorm:"primaryKey" json:"usageId"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	User        *User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ApplianceID uint       `gorm:"not null;index" json:"applianceId"`
	Appliance   *Appliance `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	// Date holds the calendar day combined with the time of day.
	Date time.Time `gorm:"not null;index" json:"date"`
	// Time holds the clock time the usage was recorded at.
	Time           time.Time      `gorm:"not null" json:"time"`
	EnergyUsed     float64        `gorm:"type:decimal(18,2);not null" json:"energyUsed"` // kWh
	UsageFrequency UsageFrequency `gorm:"not null" json:"usageFrequency"`
	ContextNotes   *string        `gorm:"type:varchar(300)" json:"contextNotes"`
	IconClass      *string        `gorm:"type:varchar(50)" json:"iconClass"`
	Version        uint           `gorm:"not null;default:1" json:"-"`
	LastModified   time.Time      `gorm:"autoUpdateTime" json:"lastModified"`
}

// TableName pins the table name.
func (Usage) TableName() string {
	return "usages"
}

// UsageEvent is the denormalized "usage created" payload pushed to live subscribers.
type UsageEvent struct {
	UsageID uint `json:"usageId"`
	// UserID and ApplianceID let every session discard events that are not its own.
	UserID         uint           `json:"userId"`
	ApplianceID    uint           `json:"applianceId"`
	ApplianceName  string         `json:"applianceName"`
	HomeName       string         `json:"homeName"`
	Date           string         `json:"date"`
	EnergyUsed     float64        `json:"energyUsed"`
	UsageFrequency UsageFrequency `json:"usageFrequency"`
	ContextNotes   *string        `json:"contextNotes"`
	IconClass      *string        `json:"iconClass"`
}

// NewUsageEvent builds the live payload for a persisted usage and its appliance.
func NewUsageEvent(u *Usage, a *Appliance) UsageEvent {
	return UsageEvent{
		UsageID:        u.ID,
		UserID:         u.UserID,
		ApplianceID:    u.ApplianceID,
		ApplianceName:  a.Name,
		HomeName:       a.HomeName(),
		Date:           u.Date.Format(EventTimeFormat),
		EnergyUsed:     u.EnergyUsed,
		UsageFrequency: u.UsageFrequency,
		ContextNotes:   u.ContextNotes,
		IconClass:      u.IconClass,
	}
}
