package service

import (
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/internal/testdb"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usageAt(appliance *model.Appliance, at time.Time, kwh float64) model.Usage {
	return model.Usage{Appliance: appliance, Date: at, Time: at, EnergyUsed: kwh}
}

func TestAggregate(t *testing.T) {
	flat := &model.Home{HouseName: "Flat", BuildingType: "Apartment"}
	villa := &model.Home{HouseName: "Villa", BuildingType: "House"}
	oven := &model.Appliance{Name: "Oven", Home: villa}
	kettle := &model.Appliance{Name: "Kettle", Home: flat}

	usages := []model.Usage{
		usageAt(oven, time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC), 1.1),
		usageAt(kettle, time.Date(2023, 12, 31, 7, 0, 0, 0, time.UTC), 0.5),
		usageAt(oven, time.Date(2024, 2, 3, 9, 30, 0, 0, time.UTC), 2),
		usageAt(kettle, time.Date(2023, 11, 4, 18, 45, 0, 0, time.UTC), 0.25),
	}

	tests := []struct {
		name   string
		kind   ChartKind
		labels []string
		energy []float64
	}{
		{"appliance keeps first-seen order", ChartByAppliance, []string{"Oven", "Kettle"}, []float64{3.1, 0.75}},
		{"home", ChartByHome, []string{"Villa", "Flat"}, []float64{3.1, 0.75}},
		{"building type", ChartByBuildingType, []string{"House", "Apartment"}, []float64{3.1, 0.75}},
		{"month is chronological", ChartByMonth, []string{"11/2023", "12/2023", "1/2024", "2/2024"}, []float64{0.25, 0.5, 1.1, 2}},
		{"hour ascending", ChartByHour, []string{"7:00", "9:00", "18:00"}, []float64{0.5, 2, 1.35}},
		{"day ascending", ChartByDay, []string{"2023-11-04", "2023-12-31", "2024-01-15", "2024-02-03"}, []float64{0.25, 0.5, 1.1, 2}},
		{"day of week", ChartByDayOfWeek, []string{"Monday", "Sunday", "Saturday"}, []float64{1.1, 0.5, 2.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(usages, tt.kind)
			assert.Equal(t, tt.labels, got.Labels)
			assert.InDeltaSlice(t, tt.energy, got.EnergyUsed, 1e-9)
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, ChartByMonth)
	assert.NotNil(t, got.Labels)
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.EnergyUsed)
}

func TestChartService_OnlyOwnUsages(t *testing.T) {
	db := testdb.New(t)
	owner := testdb.User(t, db)
	stranger := testdb.User(t, db)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	testdb.Usage(t, db, testdb.Appliance(t, db, testdb.Home(t, db, owner.ID, "Mine"), "Oven"), at, 2)
	testdb.Usage(t, db, testdb.Appliance(t, db, testdb.Home(t, db, stranger.ID, "Theirs"), "Heater"), at, 9)

	series, err := NewChartService(repository.NewUsageRepository(db)).Chart(ctx, owner.ID, ChartByAppliance)
	require.NoError(t, err)
	assert.Equal(t, []string{"Oven"}, series.Labels)
	assert.Equal(t, []float64{2}, series.EnergyUsed)
}
