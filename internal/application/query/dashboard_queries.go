package query

import (
	"time"

	"tourism-marketplace/internal/domain/repository"
)

// GetAdminDashboard query for admin dashboard statistics.
// Relative windows ("last 7 days", "last 30 days") are measured back from Now.
type GetAdminDashboard struct {
	Now time.Time
}

// AggregateReport is the complete admin dashboard statistics object.
// Every field is always populated: counts default to 0 and lists to empty
// when the underlying query failed or returned nothing.
type AggregateReport struct {
	Users        UserStats        `json:"users"`
	Bookings     BookingStats     `json:"bookings"`
	ContactForms ContactFormStats `json:"contactForms"`
	Content      ContentStats     `json:"content"`
	Bundles      PromotionStats   `json:"bundles"`
	Offers       PromotionStats   `json:"offers"`
	Analytics    AnalyticsStats   `json:"analytics"`
	GeneratedAt  time.Time        `json:"generatedAt"`
}

type UserStats struct {
	Total            int64                    `json:"total"`
	ActiveCustomers  int64                    `json:"activeCustomers"`
	Recent           int64                    `json:"recent"` // registered in the last 7 days
	ByRole           []repository.GroupCount  `json:"byRole"`
	ByStatus         []repository.GroupCount  `json:"byStatus"`
	ServiceProviders ServiceProviderBreakdown `json:"serviceProviders"`
	Listings         ListingBreakdown         `json:"listings"`
	PendingListings  ListingBreakdown         `json:"pendingListings"`
}

type ServiceProviderBreakdown struct {
	HotelOwners int64 `json:"hotelOwners"`
	CarOwners   int64 `json:"carOwners"`
	TourGuides  int64 `json:"tourGuides"`
	Total       int64 `json:"total"`
}

type ListingBreakdown struct {
	Hotels int64 `json:"hotels"`
	Cars   int64 `json:"cars"`
	Tours  int64 `json:"tours"`
	Sites  int64 `json:"sites"`
	Total  int64 `json:"total"`
}

type BookingStats struct {
	Total    int64                   `json:"total"`
	Recent   int64                   `json:"recent"` // created in the last 30 days
	Revenue  float64                 `json:"revenue"`
	ByStatus []repository.GroupCount `json:"byStatus"`
}

type ContactFormStats struct {
	Total    int64                   `json:"total"`
	New      int64                   `json:"new"`
	Recent   int64                   `json:"recent"` // received in the last 7 days
	ByStatus []repository.GroupCount `json:"byStatus"`
}

type ContentStats struct {
	Blogs ContentItemStats `json:"blogs"`
	News  ContentItemStats `json:"news"`
}

type ContentItemStats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
	Recent    int64 `json:"recent"` // created in the last 30 days
}

type PromotionStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type AnalyticsStats struct {
	TotalViews       int64       `json:"totalViews"` // last 30 days
	MostVisitedPages []PageVisit `json:"mostVisitedPages"`
}

// PageVisit is one row of the "most visited pages" table
type PageVisit struct {
	Page       string `json:"page"`
	Views      int64  `json:"views"`
	Percentage int    `json:"percentage"`
}
