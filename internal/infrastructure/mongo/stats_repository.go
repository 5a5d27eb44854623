package mongo

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tourism-marketplace/internal/domain/repository"
)

// StatsRepository serves statistics straight from the collections with
// CountDocuments and aggregation pipelines. It never writes.
type StatsRepository struct {
	client *MongoClient
}

var _ repository.StatsRepository = (*StatsRepository)(nil)

func NewStatsRepository(client *MongoClient) *StatsRepository {
	return &StatsRepository{client: client}
}

func (r *StatsRepository) Count(ctx context.Context, source repository.Source, criteria repository.Criteria) (int64, error) {
	filter, err := toFilter(criteria)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", source)
	}

	n, err := r.client.GetCollection(string(source)).CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrapf(err, "count %s", source)
	}
	return n, nil
}

func (r *StatsRepository) CountBy(ctx context.Context, source repository.Source, field string, criteria repository.Criteria) ([]repository.GroupCount, error) {
	filter, err := toFilter(criteria)
	if err != nil {
		return nil, errors.Wrapf(err, "count %s by %s", source, field)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.client.GetCollection(string(source)).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrapf(err, "count %s by %s", source, field)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    interface{} `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode %s by %s", source, field)
	}

	counts := make([]repository.GroupCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, repository.GroupCount{Key: groupKey(row.ID), Count: row.Count})
	}
	return counts, nil
}

func (r *StatsRepository) Sum(ctx context.Context, source repository.Source, field string, criteria repository.Criteria) (float64, error) {
	filter, err := toFilter(criteria)
	if err != nil {
		return 0, errors.Wrapf(err, "sum %s.%s", source, field)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$" + field}}},
		}}},
	}

	cursor, err := r.client.GetCollection(string(source)).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, errors.Wrapf(err, "sum %s.%s", source, field)
	}
	defer cursor.Close(ctx)

	// no matching documents means no group row
	if !cursor.Next(ctx) {
		return 0, errors.Wrapf(cursor.Err(), "sum %s.%s", source, field)
	}
	var row struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.Decode(&row); err != nil {
		return 0, errors.Wrapf(err, "decode sum %s.%s", source, field)
	}
	return row.Total, nil
}

func (r *StatsRepository) Ping(ctx context.Context) error {
	return errors.Wrap(r.client.Ping(ctx), "ping MongoDB")
}

// groupKey renders a grouped value as the label shown on the dashboard.
// Documents missing the field are grouped under "unknown".
func groupKey(v interface{}) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprint(v)
}
