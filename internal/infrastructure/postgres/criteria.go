package postgres

import (
	"reflect"
	"regexp"

	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"tourism-marketplace/internal/domain/repository"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return errors.Errorf("invalid identifier %q", name)
	}
	return nil
}

// toExpressions turns criteria into GORM where expressions. Values are always
// bound as parameters; only column names end up in the SQL text.
func toExpressions(criteria repository.Criteria) ([]clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(criteria))
	for _, c := range criteria {
		if err := checkIdentifier(c.Field); err != nil {
			return nil, err
		}
		col := clause.Column{Name: c.Field}

		switch c.Operator {
		case repository.OpEq:
			exprs = append(exprs, clause.Eq{Column: col, Value: c.Value})
		case repository.OpNe:
			exprs = append(exprs, clause.Neq{Column: col, Value: c.Value})
		case repository.OpGte:
			exprs = append(exprs, clause.Gte{Column: col, Value: c.Value})
		case repository.OpLt:
			exprs = append(exprs, clause.Lt{Column: col, Value: c.Value})
		case repository.OpIn:
			values, err := expand(c.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "condition on %s", c.Field)
			}
			exprs = append(exprs, clause.IN{Column: col, Values: values})
		default:
			return nil, errors.Errorf("unsupported operator %q", c.Operator)
		}
	}
	return exprs, nil
}

func expand(v interface{}) ([]interface{}, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Errorf("in expects a slice, got %T", v)
	}
	values := make([]interface{}, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values, nil
}
