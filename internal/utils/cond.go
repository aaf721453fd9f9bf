package querybuilder

import "strings"

// Condition is one WHERE predicate. Conditions are joined with AND.
type Condition struct {
	clause string
	args   []interface{}
}

func buildCondition(conditions []Condition) (string, []interface{}) {
	clauses := make([]string, len(conditions))
	args := make([]interface{}, 0)
	for i, cond := range conditions {
		clauses[i] = cond.clause
		args = append(args, cond.args...)
	}
	return strings.Join(clauses, " AND "), args
}
