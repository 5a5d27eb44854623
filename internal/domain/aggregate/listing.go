package aggregate

// ListingKind is a bookable catalogue entry published by a service provider
type ListingKind string

const (
	ListingHotel ListingKind = "hotel"
	ListingCar   ListingKind = "car"
	ListingTour  ListingKind = "tour"
	ListingSite  ListingKind = "site"
)

// ListingKinds returns every listing kind in display order
func ListingKinds() []ListingKind {
	return []ListingKind{ListingHotel, ListingCar, ListingTour, ListingSite}
}
