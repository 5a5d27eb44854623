package query

import (
	"math"
	"sort"

	"tourism-marketplace/internal/domain/aggregate"
	"tourism-marketplace/internal/domain/repository"
)

// MostVisitedPagesLimit is how many pages the dashboard table shows
const MostVisitedPagesLimit = 5

// MostVisitedPages turns per-page view counts into the dashboard's ranking.
// Percentage is round(views / total * 100) and is 0 for every page when total
// is 0. Pages without views are kept so the table lists every tracked page.
func MostVisitedPages(views []repository.GroupCount, total int64, limit int) []PageVisit {
	pages := make([]PageVisit, 0, len(views))
	for _, v := range views {
		pages = append(pages, PageVisit{
			Page:       v.Key,
			Views:      v.Count,
			Percentage: Percentage(v.Count, total),
		})
	}

	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Page < pages[j].Page
	})

	if limit > 0 && len(pages) > limit {
		pages = pages[:limit]
	}
	return pages
}

// Percentage returns round(part / total * 100), or 0 when total is not positive
func Percentage(part, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// counter returns the statistic name and field counting role, or nil for a
// role the report has no column for.
func (b *ServiceProviderBreakdown) counter(role aggregate.UserRole) (string, *int64) {
	switch role {
	case aggregate.RoleHotelOwner:
		return "hotelOwners", &b.HotelOwners
	case aggregate.RoleCarOwner:
		return "carOwners", &b.CarOwners
	case aggregate.RoleTourGuide:
		return "tourGuides", &b.TourGuides
	}
	return "", nil
}

func (b *ListingBreakdown) counter(kind aggregate.ListingKind) (string, *int64) {
	switch kind {
	case aggregate.ListingHotel:
		return "Hotels", &b.Hotels
	case aggregate.ListingCar:
		return "Cars", &b.Cars
	case aggregate.ListingTour:
		return "Tours", &b.Tours
	case aggregate.ListingSite:
		return "Sites", &b.Sites
	}
	return "", nil
}

func (b *ServiceProviderBreakdown) computeTotal() {
	b.Total = b.HotelOwners + b.CarOwners + b.TourGuides
}

func (b *ListingBreakdown) computeTotal() {
	b.Total = b.Hotels + b.Cars + b.Tours + b.Sites
}

// orEmpty keeps JSON output as [] rather than null
func orEmpty(counts []repository.GroupCount) []repository.GroupCount {
	if counts == nil {
		return []repository.GroupCount{}
	}
	return counts
}
