package aggregate

// BookingStatus represents the state of a hotel, car, tour or Umrah booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// CountsTowardsRevenue reports whether money for the booking is considered earned
func (s BookingStatus) CountsTowardsRevenue() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCompleted
}

// BookingStatuses returns every booking status in lifecycle order
func BookingStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled}
}

// RevenueBookingStatuses lists the statuses included in revenue totals
func RevenueBookingStatuses() []BookingStatus {
	var statuses []BookingStatus
	for _, s := range BookingStatuses() {
		if s.CountsTowardsRevenue() {
			statuses = append(statuses, s)
		}
	}
	return statuses
}
