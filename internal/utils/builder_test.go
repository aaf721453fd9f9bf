package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelect(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("id", "title").
		From("assignments").
		Where("id = ?", 7).
		And("title = ?", "x").
		OrderBy("id", false).
		Build()

	assert.Equal(t, "SELECT id, title FROM public.assignments WHERE id = ? AND title = ? ORDER BY id DESC", query)
	assert.Equal(t, []interface{}{7, "x"}, args)
}

func TestBuildSelectWithoutSchema(t *testing.T) {
	query, args := NewQueryBuilder("").Select("COUNT(*)").From("submissions").Build()

	assert.Equal(t, "SELECT COUNT(*) FROM submissions", query)
	assert.Empty(t, args)
}

func TestBuildInsert(t *testing.T) {
	query, args := NewQueryBuilder("grading").
		Insert("id", "score").
		Into("submissions").
		Values("a", 100).
		Values("b", 0).
		OnConflict("id").
		DoNothing().
		Build()

	assert.Equal(t, "INSERT INTO grading.submissions (id, score) VALUES (?, ?), (?, ?) ON CONFLICT (id) DO NOTHING", query)
	assert.Equal(t, []interface{}{"a", 100, "b", 0}, args)
}

func TestBuildInsertRejectsRaggedRows(t *testing.T) {
	query, args := NewQueryBuilder("public").Insert("id", "score").Into("submissions").Values("a").Build()

	assert.Empty(t, query)
	assert.Nil(t, args)
}
