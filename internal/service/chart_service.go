package service

import (
	"context"
	"effisense-go/internal/model"
	"effisense-go/internal/repository"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ChartKind selects the grouping of a chart.
type ChartKind int

const (
	ChartByAppliance ChartKind = iota
	ChartByHome
	ChartByDayOfWeek
	ChartByMonth
	ChartByHour
	ChartByBuildingType
	ChartByDay
)

// Series is a chart's labels and the energy summed under each, index-aligned.
type Series struct {
	Labels     []string
	EnergyUsed []float64
}

// ChartService aggregates the current user's usages for the dashboard charts.
type ChartService interface {
	Chart(ctx context.Context, userID uint, kind ChartKind) (Series, error)
}

type chartService struct {
	usages repository.UsageRepository
}

// NewChartService creates a ChartService.
func NewChartService(usages repository.UsageRepository) ChartService {
	return &chartService{usages: usages}
}

func (s *chartService) Chart(ctx context.Context, userID uint, kind ChartKind) (Series, error) {
	usages, err := s.usages.ListAllByUser(ctx, userID)
	if err != nil {
		return Series{}, fmt.Errorf("load usages for chart: %w", err)
	}
	return Aggregate(usages, kind), nil
}

// Aggregate groups usages by kind. Month, hour and day series are chronological;
// the categorical series keep the order in which each group first appears.
func Aggregate(usages []model.Usage, kind ChartKind) Series {
	switch kind {
	case ChartByAppliance:
		return groupInOrder(usages, func(u *model.Usage) string { return applianceName(u) })
	case ChartByHome:
		return groupInOrder(usages, func(u *model.Usage) string { return homeOf(u).HouseName })
	case ChartByDayOfWeek:
		return groupInOrder(usages, func(u *model.Usage) string { return u.Date.Weekday().String() })
	case ChartByBuildingType:
		return groupInOrder(usages, func(u *model.Usage) string {
			if bt := homeOf(u).BuildingType; bt != "" {
				return bt
			}
			return "Unknown"
		})
	case ChartByMonth:
		return groupSorted(usages,
			func(u *model.Usage) int { return u.Date.Year()*12 + int(u.Date.Month()) - 1 },
			func(k int) string { return strconv.Itoa(k%12+1) + "/" + strconv.Itoa(k/12) })
	case ChartByHour:
		return groupSorted(usages,
			func(u *model.Usage) int { return u.Time.Hour() },
			func(k int) string { return strconv.Itoa(k) + ":00" })
	case ChartByDay:
		return groupSorted(usages,
			func(u *model.Usage) int { y, m, d := u.Date.Date(); return y*10000 + int(m)*100 + d },
			func(k int) string { return fmt.Sprintf("%04d-%02d-%02d", k/10000, k/100%100, k%100) })
	}
	return Series{Labels: []string{}, EnergyUsed: []float64{}}
}

func applianceName(u *model.Usage) string {
	if u.Appliance == nil {
		return "N/A"
	}
	return u.Appliance.Name
}

func homeOf(u *model.Usage) model.Home {
	if u.Appliance == nil || u.Appliance.Home == nil {
		return model.Home{HouseName: "N/A"}
	}
	return *u.Appliance.Home
}

func groupInOrder(usages []model.Usage, key func(*model.Usage) string) Series {
	index := make(map[string]int)
	out := Series{Labels: []string{}, EnergyUsed: []float64{}}
	for i := range usages {
		k := key(&usages[i])
		pos, ok := index[k]
		if !ok {
			pos = len(out.Labels)
			index[k] = pos
			out.Labels = append(out.Labels, k)
			out.EnergyUsed = append(out.EnergyUsed, 0)
		}
		out.EnergyUsed[pos] += usages[i].EnergyUsed
	}
	roundAll(out.EnergyUsed)
	return out
}

func groupSorted(usages []model.Usage, key func(*model.Usage) int, label func(int) string) Series {
	sums := make(map[int]float64)
	for i := range usages {
		sums[key(&usages[i])] += usages[i].EnergyUsed
	}
	keys := make([]int, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := Series{Labels: make([]string, 0, len(keys)), EnergyUsed: make([]float64, 0, len(keys))}
	for _, k := range keys {
		out.Labels = append(out.Labels, label(k))
		out.EnergyUsed = append(out.EnergyUsed, sums[k])
	}
	roundAll(out.EnergyUsed)
	return out
}

func roundAll(values []float64) {
	for i, v := range values {
		values[i] = math.Round(v*100) / 100
	}
}
