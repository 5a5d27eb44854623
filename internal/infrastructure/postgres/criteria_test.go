package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"tourism-marketplace/internal/domain/repository"
)

func TestToExpressions(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	exprs, err := toExpressions(repository.Where(
		repository.Eq("role", "HOTEL_OWNER"),
		repository.Ne("page", "/admin"),
		repository.Gte("created_at", since),
		repository.Lt("valid_until", since),
		repository.In("status", []string{"CONFIRMED", "COMPLETED"}),
	))
	require.NoError(t, err)

	assert.Equal(t, []clause.Expression{
		clause.Eq{Column: clause.Column{Name: "role"}, Value: "HOTEL_OWNER"},
		clause.Neq{Column: clause.Column{Name: "page"}, Value: "/admin"},
		clause.Gte{Column: clause.Column{Name: "created_at"}, Value: since},
		clause.Lt{Column: clause.Column{Name: "valid_until"}, Value: since},
		clause.IN{Column: clause.Column{Name: "status"}, Values: []interface{}{"CONFIRMED", "COMPLETED"}},
	}, exprs)
}

func TestToExpressionsRejects(t *testing.T) {
	tests := []struct {
		name     string
		criteria repository.Criteria
	}{
		{name: "injected column", criteria: repository.Where(repository.Eq("role; DROP TABLE users", "x"))},
		{name: "upper case column", criteria: repository.Where(repository.Eq("Role", "x"))},
		{name: "in without slice", criteria: repository.Where(repository.In("status", "CONFIRMED"))},
		{name: "unknown operator", criteria: repository.Criteria{{Field: "status", Operator: "like", Value: "N%"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := toExpressions(tt.criteria)
			assert.Error(t, err)
		})
	}
}

func TestEmptyCriteria(t *testing.T) {
	exprs, err := toExpressions(nil)
	require.NoError(t, err)
	assert.Empty(t, exprs)
}
