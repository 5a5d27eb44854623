package repository

import (
	"context"
	"time"

	"tourism-marketplace/internal/domain/aggregate"
)

// Source names a collection (MongoDB) or table (PostgreSQL) the statistics read from
type Source string

const (
	SourceUsers        Source = "users"
	SourceHotels       Source = "hotels"
	SourceCars         Source = "cars"
	SourceTours        Source = "tours"
	SourceSites        Source = "sites"
	SourceBookings     Source = "bookings"
	SourceContactForms Source = "contact_forms"
	SourceBlogs        Source = "blogs"
	SourceNews         Source = "news"
	SourceBundles      Source = "bundles"
	SourceOffers       Source = "offers"
	SourcePageViews    Source = "page_views"
)

// ListingSource maps a listing kind to the source holding its rows
func ListingSource(kind aggregate.ListingKind) Source {
	switch kind {
	case aggregate.ListingHotel:
		return SourceHotels
	case aggregate.ListingCar:
		return SourceCars
	case aggregate.ListingTour:
		return SourceTours
	case aggregate.ListingSite:
		return SourceSites
	}
	return ""
}

// Field names shared by every store
const (
	FieldRole       = "role"
	FieldStatus     = "status"
	FieldCreatedAt  = "created_at"
	FieldIsVerified = "is_verified"
	FieldIsActive   = "is_active"
	FieldValidUntil = "valid_until"
	FieldTotalPrice = "total_price"
	FieldPage       = "page"
)

// Operator is a comparison used in a Condition
type Operator string

const (
	OpEq  Operator = "eq"
	OpNe  Operator = "ne"
	OpIn  Operator = "in"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
)

// Condition is a single field predicate
type Condition struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// Criteria is a conjunction of conditions. An empty Criteria matches every row.
type Criteria []Condition

func Eq(field string, value interface{}) Condition {
	return Condition{Field: field, Operator: OpEq, Value: value}
}

func Ne(field string, value interface{}) Condition {
	return Condition{Field: field, Operator: OpNe, Value: value}
}

// In matches any of values. Values must be a slice.
func In(field string, values interface{}) Condition {
	return Condition{Field: field, Operator: OpIn, Value: values}
}

func Gte(field string, value interface{}) Condition {
	return Condition{Field: field, Operator: OpGte, Value: value}
}

func Lt(field string, value interface{}) Condition {
	return Condition{Field: field, Operator: OpLt, Value: value}
}

// Since matches rows created at or after t
func Since(t time.Time) Condition {
	return Gte(FieldCreatedAt, t)
}

// Where builds a Criteria from conditions
func Where(conditions ...Condition) Criteria {
	return Criteria(conditions)
}

// GroupCount is one row of a grouped count
type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// StatsRepository provides the read-only counting operations used to build
// back-office statistics. Implementations must not write.
type StatsRepository interface {
	Count(ctx context.Context, source Source, criteria Criteria) (int64, error)
	CountBy(ctx context.Context, source Source, field string, criteria Criteria) ([]GroupCount, error)
	Sum(ctx context.Context, source Source, field string, criteria Criteria) (float64, error)
	Ping(ctx context.Context) error
}
