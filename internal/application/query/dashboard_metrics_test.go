package query

import (
	"testing"

	"tourism-marketplace/internal/domain/repository"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name        string
		part, total int64
		want        int
	}{
		{name: "zero total", part: 5, total: 0, want: 0},
		{name: "negative total", part: 5, total: -1, want: 0},
		{name: "exact", part: 1, total: 4, want: 25},
		{name: "rounds down", part: 1, total: 3, want: 33},
		{name: "rounds up", part: 2, total: 3, want: 67},
		{name: "half rounds away from zero", part: 1, total: 8, want: 13},
		{name: "whole", part: 9, total: 9, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.part, tt.total))
		})
	}
}

func TestMostVisitedPages(t *testing.T) {
	t.Run("orders by views and truncates", func(t *testing.T) {
		views := []repository.GroupCount{
			{Key: "/cars", Count: 10},
			{Key: "/hotels", Count: 40},
			{Key: "/blog", Count: 10},
			{Key: "/tours", Count: 25},
			{Key: "/umrah", Count: 5},
			{Key: "/contact", Count: 0},
		}

		got := MostVisitedPages(views, 90, MostVisitedPagesLimit)

		assert.Equal(t, []PageVisit{
			{Page: "/hotels", Views: 40, Percentage: 44},
			{Page: "/tours", Views: 25, Percentage: 28},
			{Page: "/blog", Views: 10, Percentage: 11},
			{Page: "/cars", Views: 10, Percentage: 11},
			{Page: "/umrah", Views: 5, Percentage: 6},
		}, got)
	})

	t.Run("zero total gives zero percentages", func(t *testing.T) {
		views := []repository.GroupCount{{Key: "/hotels", Count: 0}, {Key: "/tours", Count: 0}}

		got := MostVisitedPages(views, 0, MostVisitedPagesLimit)

		assert.Equal(t, []PageVisit{
			{Page: "/hotels", Views: 0, Percentage: 0},
			{Page: "/tours", Views: 0, Percentage: 0},
		}, got)
	})

	t.Run("no views is an empty list", func(t *testing.T) {
		got := MostVisitedPages(nil, 0, MostVisitedPagesLimit)

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestBreakdownTotals(t *testing.T) {
	sp := ServiceProviderBreakdown{HotelOwners: 2, CarOwners: 3, TourGuides: 4, Total: 99}
	sp.computeTotal()
	assert.Equal(t, int64(9), sp.Total)

	l := ListingBreakdown{Hotels: 1, Cars: 2, Tours: 3, Sites: 4}
	l.computeTotal()
	assert.Equal(t, int64(10), l.Total)
}
