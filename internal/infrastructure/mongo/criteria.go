package mongo

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"tourism-marketplace/internal/domain/repository"
)

var mongoOperators = map[repository.Operator]string{
	repository.OpNe:  "$ne",
	repository.OpIn:  "$in",
	repository.OpGte: "$gte",
	repository.OpLt:  "$lt",
}

// toFilter translates criteria into a bson filter. Conditions on the same
// field are merged into one operator document.
func toFilter(criteria repository.Criteria) (bson.M, error) {
	filter := bson.M{}
	for _, c := range criteria {
		if c.Field == "" {
			return nil, errors.New("condition without field")
		}

		if c.Operator == repository.OpEq {
			if _, exists := filter[c.Field]; exists {
				return nil, errors.Errorf("field %q used in an equality and another condition", c.Field)
			}
			filter[c.Field] = c.Value
			continue
		}

		op, ok := mongoOperators[c.Operator]
		if !ok {
			return nil, errors.Errorf("unsupported operator %q", c.Operator)
		}

		switch existing := filter[c.Field].(type) {
		case nil:
			filter[c.Field] = bson.M{op: c.Value}
		case bson.M:
			existing[op] = c.Value
		default:
			return nil, errors.Errorf("field %q used in an equality and another condition", c.Field)
		}
	}
	return filter, nil
}
