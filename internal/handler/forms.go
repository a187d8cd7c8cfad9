package handler

import (
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"strconv"
	"strings"
	"time"
)

// HomeForm is the create/edit form of a home.
type HomeForm struct {
	HouseName       string `form:"HouseName" binding:"required,max=100"`
	Size            int    `form:"Size" binding:"required,min=1,max=100000"`
	HeatingType     string `form:"HeatingType" binding:"max=50"`
	BuildingType    string `form:"BuildingType" binding:"max=50"`
	InsulationLevel string `form:"InsulationLevel" binding:"max=50"`
	YearBuilt       string `form:"YearBuilt" binding:"omitempty,numeric,len=4"`
	Description     string `form:"Description" binding:"max=2000"`
	Address         string `form:"Address" binding:"max=200"`
	Location        string `form:"Location" binding:"max=100"`
	Version         uint   `form:"Version"`
}

func (f HomeForm) model(id uint) *model.Home {
	home := &model.Home{
		ID:              id,
		HouseName:       strings.TrimSpace(f.HouseName),
		Size:            f.Size,
		HeatingType:     f.HeatingType,
		BuildingType:    f.BuildingType,
		InsulationLevel: f.InsulationLevel,
		Description:     f.Description,
		Address:         f.Address,
		Location:        f.Location,
		Version:         f.Version,
	}
	if year, err := strconv.Atoi(f.YearBuilt); err == nil {
		home.YearBuilt = &year
	}
	return home
}

func homeFormFrom(h *model.Home) HomeForm {
	f := HomeForm{
		HouseName:       h.HouseName,
		Size:            h.Size,
		HeatingType:     h.HeatingType,
		BuildingType:    h.BuildingType,
		InsulationLevel: h.InsulationLevel,
		Description:     h.Description,
		Address:         h.Address,
		Location:        h.Location,
		Version:         h.Version,
	}
	if h.YearBuilt != nil {
		f.YearBuilt = strconv.Itoa(*h.YearBuilt)
	}
	return f
}

// ApplianceForm is the create/edit form of an appliance.
type ApplianceForm struct {
	HomeID           uint   `form:"HomeId"`
	Name             string `form:"Name" binding:"required,max=100"`
	Brand            string `form:"Brand" binding:"max=100"`
	PowerRating      string `form:"PowerRating" binding:"omitempty,powerrating"`
	EfficiencyRating string `form:"EfficiencyRating" binding:"max=20"`
	Notes            string `form:"Notes" binding:"max=500"`
	PurchaseDate     string `form:"PurchaseDate" binding:"omitempty,datetime=2006-01-02"`
	IconClass        string `form:"IconClass" binding:"max=50"`
	Version          uint   `form:"Version"`
}

func (f ApplianceForm) model(id uint) *model.Appliance {
	appliance := &model.Appliance{
		ID:               id,
		HomeID:           f.HomeID,
		Name:             strings.TrimSpace(f.Name),
		Brand:            f.Brand,
		PowerRating:      f.PowerRating,
		EfficiencyRating: f.EfficiencyRating,
		Notes:            f.Notes,
		IconClass:        f.IconClass,
		Version:          f.Version,
	}
	if day, err := time.Parse(model.DateFormat, f.PurchaseDate); err == nil {
		appliance.PurchaseDate = &day
	}
	return appliance
}

func applianceFormFrom(a *model.Appliance) ApplianceForm {
	f := ApplianceForm{
		HomeID:           a.HomeID,
		Name:             a.Name,
		Brand:            a.Brand,
		PowerRating:      a.PowerRating,
		EfficiencyRating: a.EfficiencyRating,
		Notes:            a.Notes,
		IconClass:        a.IconClass,
		Version:          a.Version,
	}
	if a.PurchaseDate != nil {
		f.PurchaseDate = a.PurchaseDate.Format(model.DateFormat)
	}
	return f
}

// UsageForm is the create/edit form of a usage. HomeID only narrows the appliance picker.
type UsageForm struct {
	HomeID         uint    `form:"HomeId"`
	ApplianceID    uint    `form:"ApplianceId"`
	Date           string  `form:"Date" binding:"required,datetime=2006-01-02"`
	Time           string  `form:"Time" binding:"omitempty,datetime=15:04"`
	EnergyUsed     float64 `form:"EnergyUsed" binding:"gte=0"`
	UsageFrequency int     `form:"UsageFrequency" binding:"usagefreq"`
	ContextNotes   string  `form:"ContextNotes" binding:"max=300"`
	Version        uint    `form:"Version"`
}

func (f UsageForm) model(id uint) (*model.Usage, error) {
	day, err := time.Parse(model.DateFormat, f.Date)
	if err != nil {
		return nil, service.NewValidationError("Date", "Date must use the format 2006-01-02.")
	}
	clock := day
	if f.Time != "" {
		parsed, err := time.Parse(model.ClockFormat, f.Time)
		if err != nil {
			return nil, service.NewValidationError("Time", "Time must use the format 15:04.")
		}
		clock = parsed
	}
	at := model.CombineDateAndClock(day, clock)

	usage := &model.Usage{
		ID:             id,
		ApplianceID:    f.ApplianceID,
		Date:           at,
		Time:           at,
		EnergyUsed:     f.EnergyUsed,
		UsageFrequency: model.UsageFrequency(f.UsageFrequency),
		Version:        f.Version,
	}
	if notes := strings.TrimSpace(f.ContextNotes); notes != "" {
		usage.ContextNotes = &notes
	}
	return usage, nil
}

func usageFormFrom(u *model.Usage) UsageForm {
	f := UsageForm{
		ApplianceID:    u.ApplianceID,
		Date:           u.Date.Format(model.DateFormat),
		Time:           u.Date.Format(model.ClockFormat),
		EnergyUsed:     u.EnergyUsed,
		UsageFrequency: int(u.UsageFrequency),
		Version:        u.Version,
	}
	if u.Appliance != nil {
		f.HomeID = u.Appliance.HomeID
	}
	if u.ContextNotes != nil {
		f.ContextNotes = *u.ContextNotes
	}
	return f
}
