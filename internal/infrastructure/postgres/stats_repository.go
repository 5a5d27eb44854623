package postgres

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tourism-marketplace/internal/domain/repository"
)

// StatsRepository reads statistics from PostgreSQL tables named after each
// repository.Source.
type StatsRepository struct {
	db *gorm.DB
}

var _ repository.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) scope(ctx context.Context, source repository.Source, criteria repository.Criteria) (*gorm.DB, error) {
	if err := checkIdentifier(string(source)); err != nil {
		return nil, err
	}
	exprs, err := toExpressions(criteria)
	if err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).Table(string(source))
	if len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	return tx, nil
}

func (r *StatsRepository) Count(ctx context.Context, source repository.Source, criteria repository.Criteria) (int64, error) {
	tx, err := r.scope(ctx, source, criteria)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", source)
	}

	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "count %s", source)
	}
	return n, nil
}

func (r *StatsRepository) CountBy(ctx context.Context, source repository.Source, field string, criteria repository.Criteria) ([]repository.GroupCount, error) {
	if err := checkIdentifier(field); err != nil {
		return nil, errors.Wrapf(err, "count %s by field", source)
	}
	tx, err := r.scope(ctx, source, criteria)
	if err != nil {
		return nil, errors.Wrapf(err, "count %s by %s", source, field)
	}

	var rows []struct {
		GroupKey string
		Total    int64
	}
	err = tx.
		Select("COALESCE(CAST(? AS TEXT), 'unknown') AS group_key, COUNT(*) AS total", clause.Column{Name: field}).
		Group("group_key").
		Order("total DESC, group_key ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "count %s by %s", source, field)
	}

	counts := make([]repository.GroupCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, repository.GroupCount{Key: row.GroupKey, Count: row.Total})
	}
	return counts, nil
}

func (r *StatsRepository) Sum(ctx context.Context, source repository.Source, field string, criteria repository.Criteria) (float64, error) {
	if err := checkIdentifier(field); err != nil {
		return 0, errors.Wrapf(err, "sum %s", source)
	}
	tx, err := r.scope(ctx, source, criteria)
	if err != nil {
		return 0, errors.Wrapf(err, "sum %s.%s", source, field)
	}

	var total float64
	if err := tx.Select("COALESCE(SUM(?), 0)", clause.Column{Name: field}).Scan(&total).Error; err != nil {
		return 0, errors.Wrapf(err, "sum %s.%s", source, field)
	}
	return total, nil
}

func (r *StatsRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "ping Postgres")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping Postgres")
}
