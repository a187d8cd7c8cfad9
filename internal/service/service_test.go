package service

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/internal/testdb"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var ctx = context.Background()

type recordingPublisher struct {
	events []model.UsageEvent
	err    error
}

func (p *recordingPublisher) PublishUsageCreated(_ context.Context, e model.UsageEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	db         *gorm.DB
	homes      HomeService
	appliances ApplianceService
	usages     UsageService
	publisher  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	db := testdb.New(t)
	homeRepo := repository.NewHomeRepository(db)
	applianceRepo := repository.NewApplianceRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	pub := &recordingPublisher{}
	return &fixture{
		db:         db,
		homes:      NewHomeService(homeRepo, applianceRepo, 9),
		appliances: NewApplianceService(applianceRepo, homeRepo, 9),
		usages:     NewUsageService(usageRepo, applianceRepo, pub, 9),
		publisher:  pub,
	}
}

func TestHomeService_Pagination(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	for i := 0; i < 20; i++ {
		testdb.Home(t, f.db, owner.ID, fmt.Sprintf("Home %02d", i))
	}

	first, err := f.homes.List(ctx, owner.ID, 1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 9)
	assert.True(t, first.HasMore)

	third, err := f.homes.List(ctx, owner.ID, 3)
	require.NoError(t, err)
	assert.Len(t, third.Items, 2)
	assert.False(t, third.HasMore)

	clamped, err := f.homes.List(ctx, owner.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.PageNumber)
	assert.Equal(t, first.Items[0].ID, clamped.Items[0].ID)
}

func TestHomeService_NotFoundVersusForbidden(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	home := testdb.Home(t, f.db, owner.ID, "Mine")

	_, err := f.homes.Get(ctx, owner.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.homes.Get(ctx, stranger.ID, home.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, f.homes.Delete(ctx, stranger.ID, home.ID), ErrForbidden)
	assert.Equal(t, int64(1), testdb.Count(t, f.db, &model.Home{}))
}

func TestHomeService_CreateIgnoresSuppliedOwner(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)

	home := &model.Home{UserID: stranger.ID, HouseName: "Sneaky", Size: 40}
	require.NoError(t, f.homes.Create(ctx, owner.ID, home))

	stored, err := f.homes.Get(ctx, owner.ID, home.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, stored.UserID)
}

func TestHomeService_UpdateConflictAndVanished(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	home := testdb.Home(t, f.db, owner.ID, "Original")

	edit := *home
	edit.HouseName = "First edit"
	require.NoError(t, f.homes.Update(ctx, owner.ID, &edit))

	stale := *home
	stale.HouseName = "Stale edit"
	assert.ErrorIs(t, f.homes.Update(ctx, owner.ID, &stale), ErrConflict)

	require.NoError(t, f.homes.Delete(ctx, owner.ID, home.ID))
	assert.ErrorIs(t, f.homes.Update(ctx, owner.ID, &edit), ErrNotFound)
}

func TestHomeService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	home := testdb.Home(t, f.db, owner.ID, "Doomed")
	a := testdb.Appliance(t, f.db, home, "Oven")
	b := testdb.Appliance(t, f.db, home, "Fridge")
	testdb.Usage(t, f.db, a, time.Now().UTC(), 1)
	testdb.Usage(t, f.db, b, time.Now().UTC(), 2)

	require.NoError(t, f.homes.Delete(ctx, owner.ID, home.ID))

	assert.Zero(t, testdb.Count(t, f.db, &model.Appliance{}))
	assert.Zero(t, testdb.Count(t, f.db, &model.Usage{}))
}

func TestHomeService_AppliancesOfForeignHomeForbidden(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	home := testdb.Home(t, f.db, owner.ID, "Mine")
	testdb.Appliance(t, f.db, home, "Oven")

	list, err := f.homes.Appliances(ctx, owner.ID, home.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.homes.Appliances(ctx, stranger.ID, home.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApplianceService_CreateInForeignHomeForbidden(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	home := testdb.Home(t, f.db, owner.ID, "Mine")

	err := f.appliances.Create(ctx, stranger.ID, &model.Appliance{HomeID: home.ID, Name: "Planted"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.appliances.Create(ctx, owner.ID, &model.Appliance{HomeID: 4242, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, isValidation := IsValidation(f.appliances.Create(ctx, owner.ID, &model.Appliance{Name: "No home"}))
	assert.True(t, isValidation)

	assert.Zero(t, testdb.Count(t, f.db, &model.Appliance{}))
}

func TestApplianceService_MoveToForeignHomeForbidden(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	mine := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Mine"), "Oven")
	theirs := testdb.Home(t, f.db, stranger.ID, "Theirs")

	edit := *mine
	edit.Home = nil
	edit.HomeID = theirs.ID
	assert.ErrorIs(t, f.appliances.Update(ctx, owner.ID, &edit), ErrForbidden)

	stored, err := f.appliances.Get(ctx, owner.ID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.HomeID, stored.HomeID)
}

func TestUsageService_CreatePublishesEvent(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	at := time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)

	usage := &model.Usage{ApplianceID: appliance.ID, Date: at, Time: at, EnergyUsed: 0.75, UsageFrequency: model.FrequencyAlways}
	require.NoError(t, f.usages.Create(ctx, owner.ID, usage))

	require.Len(t, f.publisher.events, 1)
	ev := f.publisher.events[0]
	assert.Equal(t, usage.ID, ev.UsageID)
	assert.Equal(t, "Kettle", ev.ApplianceName)
	assert.Equal(t, "Flat", ev.HomeName)
	assert.Equal(t, "2024-05-01 07:30", ev.Date)
	assert.Equal(t, owner.ID, usage.UserID)
	assert.Equal(t, owner.ID, ev.UserID)
	assert.Equal(t, appliance.ID, ev.ApplianceID)
}

func TestUsageService_PublishFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = fmt.Errorf("broker down")
	owner := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	now := time.Now().UTC()

	err := f.usages.Create(ctx, owner.ID, &model.Usage{ApplianceID: appliance.ID, Date: now, Time: now, EnergyUsed: 1, UsageFrequency: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), testdb.Count(t, f.db, &model.Usage{}))
}

func TestUsageService_ForeignApplianceForbidden(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	now := time.Now().UTC()

	err := f.usages.Create(ctx, stranger.ID, &model.Usage{ApplianceID: appliance.ID, Date: now, Time: now, EnergyUsed: 1, UsageFrequency: 2})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, testdb.Count(t, f.db, &model.Usage{}))
	assert.Empty(t, f.publisher.events)

	existing := testdb.Usage(t, f.db, appliance, now, 2)
	_, err = f.usages.Get(ctx, stranger.ID, existing.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.usages.Get(ctx, owner.ID, existing.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsageService_StrangerCannotEditOrDelete(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	strangerAppliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, stranger.ID, "Cabin"), "Heater")
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	existing := testdb.Usage(t, f.db, appliance, at, 2)

	edit := &model.Usage{ID: existing.ID, ApplianceID: appliance.ID, Date: at, Time: at, EnergyUsed: 99, UsageFrequency: 1}
	assert.ErrorIs(t, f.usages.Update(ctx, stranger.ID, edit), ErrForbidden)

	// Pointing the usage at the stranger's own appliance does not help either.
	edit = &model.Usage{ID: existing.ID, ApplianceID: strangerAppliance.ID, Date: at, Time: at, EnergyUsed: 99, UsageFrequency: 1}
	assert.ErrorIs(t, f.usages.Update(ctx, stranger.ID, edit), ErrForbidden)

	assert.ErrorIs(t, f.usages.Delete(ctx, stranger.ID, existing.ID), ErrForbidden)

	assert.Equal(t, int64(1), testdb.Count(t, f.db, &model.Usage{}))
	stored, err := f.usages.Get(ctx, owner.ID, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, appliance.ID, stored.ApplianceID)
	assert.Equal(t, 2.0, stored.EnergyUsed)
}

func TestUsageService_MoveToForeignApplianceForbidden(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	foreign := testdb.Appliance(t, f.db, testdb.Home(t, f.db, stranger.ID, "Cabin"), "Heater")
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	existing := testdb.Usage(t, f.db, appliance, at, 2)

	edit := &model.Usage{ID: existing.ID, ApplianceID: foreign.ID, Date: at, Time: at, EnergyUsed: 3, UsageFrequency: 2}
	assert.ErrorIs(t, f.usages.Update(ctx, owner.ID, edit), ErrForbidden)

	stored, err := f.usages.Get(ctx, owner.ID, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, appliance.ID, stored.ApplianceID)
	assert.Equal(t, owner.ID, stored.UserID)
	assert.Equal(t, 2.0, stored.EnergyUsed)

	strangerUsages, err := f.usages.FilterByDate(ctx, stranger.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, strangerUsages)
}

func TestHomeService_StrangerCannotEditOrDelete(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	stranger := testdb.User(t, f.db)
	home := testdb.Home(t, f.db, owner.ID, "Flat")
	testdb.Appliance(t, f.db, home, "Kettle")

	err := f.homes.Update(ctx, stranger.ID, &model.Home{ID: home.ID, HouseName: "Taken", Size: 10, Version: home.Version})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.homes.Delete(ctx, stranger.ID, home.ID), ErrForbidden)

	stored, err := f.homes.Get(ctx, owner.ID, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flat", stored.HouseName)
	assert.Equal(t, int64(1), testdb.Count(t, f.db, &model.Home{}))
	assert.Equal(t, int64(1), testdb.Count(t, f.db, &model.Appliance{}))
}

func TestUsageService_ValidationPersistsNothing(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	now := time.Now().UTC()

	err := f.usages.Create(ctx, owner.ID, &model.Usage{ApplianceID: appliance.ID, Date: now, Time: now, EnergyUsed: -1, UsageFrequency: 9})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "EnergyUsed")
	assert.Contains(t, verr.Fields, "UsageFrequency")
	assert.Zero(t, testdb.Count(t, f.db, &model.Usage{}))
}

func TestUsageService_FilterByDate(t *testing.T) {
	f := newFixture(t)
	owner := testdb.User(t, f.db)
	appliance := testdb.Appliance(t, f.db, testdb.Home(t, f.db, owner.ID, "Flat"), "Kettle")
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	testdb.Usage(t, f.db, appliance, day.Add(6*time.Hour), 1)
	testdb.Usage(t, f.db, appliance, day.Add(23*time.Hour), 1)
	testdb.Usage(t, f.db, appliance, day.Add(25*time.Hour), 1)

	onDay, err := f.usages.FilterByDate(ctx, owner.ID, &day)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	all, err := f.usages.FilterByDate(ctx, owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.After(all[2].Date))
}
