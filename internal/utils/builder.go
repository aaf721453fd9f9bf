package querybuilder

import (
	"fmt"
	"strings"
)

// QueryBuilder builds SELECT and INSERT statements with "?" placeholders.
// Rebind the result with sqlx for the target driver.
type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Into(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder
	OrderBy(col string, asc bool) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Values(values ...interface{}) QueryBuilder
	OnConflict(cols ...string) QueryBuilder
	DoNothing() QueryBuilder

	Build() (string, []interface{})
}

type queryBuilder struct {
	table      string
	cols       []string
	conditions []Condition
	values     InsertRows
	orderBy    []string
	onConflict []string
	schema     string
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{
		schema: schema,
	}
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.cols = cols
	return q
}

func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

// DoNothing is the only conflict action supported
func (q *queryBuilder) DoNothing() QueryBuilder {
	return q
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{clause: clause, args: args})
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	orderVector := "ASC"
	if !asc {
		orderVector = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, orderVector))
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

// Build returns an empty query when an insert is malformed
func (q *queryBuilder) Build() (string, []interface{}) {
	if len(q.values) > 0 {
		return q.buildInsert()
	}
	return q.buildSelect()
}

func (q *queryBuilder) qualifiedTable() string {
	if q.schema == "" {
		return q.table
	}
	return fmt.Sprintf("%s.%s", q.schema, q.table)
}

func (q *queryBuilder) buildSelect() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(q.cols, ", "), q.qualifiedTable())

	var args []interface{}

	if len(q.conditions) > 0 {
		condition, condArgs := buildCondition(q.conditions)
		query += fmt.Sprintf(" WHERE %s", condition)
		args = append(args, condArgs...)
	}

	if len(q.orderBy) > 0 {
		query += fmt.Sprintf(" ORDER BY %s", strings.Join(q.orderBy, ", "))
	}

	return query, args
}

func (q *queryBuilder) buildInsert() (string, []interface{}) {
	numOfParam := len(q.cols)
	if numOfParam == 0 {
		return "", nil
	}

	valueTuples := make([]string, len(q.values))
	args := make([]interface{}, 0, len(q.values)*numOfParam)
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", numOfParam), ", ") + ")"

	for i, row := range q.values {
		if len(row) != numOfParam {
			return "", nil
		}
		args = append(args, row...)
		valueTuples[i] = placeholders
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		q.qualifiedTable(), strings.Join(q.cols, ", "), strings.Join(valueTuples, ", "))

	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(q.onConflict, ", "))
	}
	return query, args
}
