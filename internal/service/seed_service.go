package service

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"effisense-go/pkg/llm"
	"effisense-go/pkg/log"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
)

const nameListPrompt = "You are an assistant that generates lists of unique names. " +
	"Return ONLY the list of names, each on a new line. DO NOT include numbers, bullet points, or any extra text."

var (
	fallbackHomeNames = []string{
		"Rila View", "Pirin Lodge", "Vitosha Nest", "Black Sea Cottage", "Rose Valley House",
		"Balkan Retreat", "Danube Villa", "Rhodope Cabin", "Iskar Terrace", "Struma Farmhouse",
		"Maritsa Corner", "Tundzha Loft", "Strandzha Hideaway", "Sunny Beach Flat", "Melnik Manor",
		"Koprivshtitsa Home", "Plovdiv Old Town House", "Varna Harbour Flat", "Bansko Chalet", "Sozopol Studio",
	}
	fallbackApplianceNames = []string{
		"Refrigerator", "Washing Machine", "Dishwasher", "Electric Oven", "Microwave",
		"Kettle", "Toaster", "Coffee Maker", "Air Conditioner", "Heat Pump",
		"Electric Boiler", "Tumble Dryer", "Vacuum Cleaner", "Television", "Desktop Computer",
		"Laptop Charger", "Freezer", "Induction Hob", "Range Hood", "Iron",
		"Hair Dryer", "Space Heater", "Dehumidifier", "Ceiling Fan", "Game Console",
	}
	fallbackBrands = []string{"Bosch", "Siemens", "Miele", "Electrolux", "Whirlpool", "Samsung", "LG", "Beko", "Gorenje", "Philips"}

	applianceIcons = []string{"fa-plug", "fa-tv", "fa-blender", "fa-fan", "fa-lightbulb", "fa-fire", "fa-snowflake", "fa-laptop"}

	listNumbering = regexp.MustCompile(`^\s*(\d+[.)]|[-*•])\s*`)
)

// SeedResult counts the rows FillDatabase created.
type SeedResult struct {
	Homes      int `json:"homes"`
	Appliances int `json:"appliances"`
	Usages     int `json:"usages"`
}

// SeedService replaces a user's data with generated demo homes, appliances and usages.
type SeedService interface {
	FillDatabase(ctx context.Context, userID uint) (SeedResult, error)
}

type seedService struct {
	uow    repository.UnitOfWork
	client llm.Client
	rng    *rand.Rand
	now    func() time.Time
}

// NewSeedService creates a SeedService. A nil rng is seeded from the clock.
func NewSeedService(uow repository.UnitOfWork, client llm.Client, rng *rand.Rand) SeedService {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>17))
	}
	return &seedService{uow: uow, client: client, rng: rng, now: time.Now}
}

// FillDatabase wipes the user's homes (cascading to appliances and usages) and generates
// 10-20 homes, 50-70 appliances and 100-200 usages spread over the last 30 days.
// The wipe and the inserts commit together; on failure the old data is kept.
func (s *seedService) FillDatabase(ctx context.Context, userID uint) (SeedResult, error) {
	// 1. Names, fetched before the transaction opens
	homeNames := s.names(ctx, "Generate 20 unique Bulgarian-themed home names.", fallbackHomeNames)
	applianceNames := s.names(ctx, "Generate 50 unique names for household appliances.", fallbackApplianceNames)
	brands := s.names(ctx, "Generate 10 unique brand names for household appliances.", fallbackBrands)

	// 2. Homes
	homeCount := 10 + s.rng.IntN(11)
	homes := make([]*model.Home, 0, homeCount)
	for i := 0; i < homeCount; i++ {
		name := homeNames[i%len(homeNames)]
		if i >= len(homeNames) {
			name = fmt.Sprintf("%s %d", name, i/len(homeNames)+1)
		}
		homes = append(homes, &model.Home{
			UserID:          userID,
			HouseName:       truncate(name, 100),
			Size:            50 + s.rng.IntN(250),
			HeatingType:     s.pick("Electric", "Gas"),
			BuildingType:    s.pick("Apartment", "House"),
			InsulationLevel: s.pick("Low", "High"),
			Location:        fmt.Sprintf("Bulgaria, %d", 1000+s.rng.IntN(8000)),
			Address:         truncate(fmt.Sprintf("Ul. %d, %s", 1+s.rng.IntN(99), name), 200),
		})
	}

	// 3. Appliances, each bound to a home by index until the homes have ids
	applianceCount := 50 + s.rng.IntN(21)
	appliances := make([]*model.Appliance, 0, applianceCount)
	applianceHome := make([]int, 0, applianceCount)
	for i := 0; i < applianceCount; i++ {
		applianceHome = append(applianceHome, s.rng.IntN(len(homes)))
		appliances = append(appliances, &model.Appliance{
			Name:        truncate(applianceNames[i%len(applianceNames)], 100),
			Brand:       truncate(brands[s.rng.IntN(len(brands))], 100),
			PowerRating: fmt.Sprintf("%dW", 500+s.rng.IntN(1500)),
			IconClass:   applianceIcons[s.rng.IntN(len(applianceIcons))],
		})
	}

	// 4. Usages, likewise bound to an appliance by index
	now := s.now().UTC()
	usageCount := 100 + s.rng.IntN(101)
	usages := make([]*model.Usage, 0, usageCount)
	usageAppliance := make([]int, 0, usageCount)
	for i := 0; i < usageCount; i++ {
		usageAppliance = append(usageAppliance, s.rng.IntN(len(appliances)))
		day := now.AddDate(0, 0, -(1 + s.rng.IntN(29)))
		clock := now.Add(-time.Duration(1+s.rng.IntN(23)) * time.Hour)
		usages = append(usages, &model.Usage{
			UserID:         userID,
			Date:           model.CombineDateAndClock(day, clock),
			Time:           clock,
			EnergyUsed:     math.Round(s.rng.Float64()*5*100) / 100,
			UsageFrequency: model.UsageFrequency(1 + s.rng.IntN(5)),
		})
	}

	// 5. Wipe and write
	err := s.uow.Do(ctx, func(repos repository.Repositories) error {
		if err := repos.Homes.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("clear user data: %w", err)
		}
		if err := repos.Homes.CreateBatch(ctx, homes); err != nil {
			return fmt.Errorf("create homes: %w", err)
		}
		for i, a := range appliances {
			a.HomeID = homes[applianceHome[i]].ID
		}
		if err := repos.Appliances.CreateBatch(ctx, appliances); err != nil {
			return fmt.Errorf("create appliances: %w", err)
		}
		for i, u := range usages {
			u.ApplianceID = appliances[usageAppliance[i]].ID
		}
		if err := repos.Usages.CreateBatch(ctx, usages); err != nil {
			return fmt.Errorf("create usages: %w", err)
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	result := SeedResult{Homes: len(homes), Appliances: len(appliances), Usages: len(usages)}
	log.Infow("demo data generated", "userId", userID, "homes", result.Homes, "appliances", result.Appliances, "usages", result.Usages)
	return result, nil
}

func (s *seedService) pick(a, b string) string {
	if s.rng.IntN(2) == 0 {
		return a
	}
	return b
}

// names asks the completion service for a list and shuffles it; any failure uses fallback.
func (s *seedService) names(ctx context.Context, prompt string, fallback []string) []string {
	var list []string
	if s.client != nil {
		answer, err := s.client.ChatCompletion(ctx, []llm.Message{
			{Role: "system", Content: nameListPrompt},
			{Role: "user", Content: prompt},
		}, nil)
		if err != nil {
			log.Warnw("seed: name generation failed, using built-in names", "error", err)
		} else {
			list = ParseNameList(answer)
		}
	}
	if len(list) == 0 {
		list = append([]string(nil), fallback...)
	}
	s.rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
	return list
}

// ParseNameList splits a completion into names on newlines and commas,
// dropping list numbering, bullets and duplicates.
func ParseNameList(text string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' }) {
		name := strings.TrimSpace(listNumbering.ReplaceAllString(strings.TrimSpace(line), ""))
		if name == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			continue
		}
		seen[strings.ToLower(name)] = struct{}{}
		names = append(names, name)
	}
	return names
}
