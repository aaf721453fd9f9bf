package domain

// ProblemType represents the grading path of an assignment
type ProblemType string

const (
	ProblemTypeCoding ProblemType = "coding"
	ProblemTypeSQL    ProblemType = "sql"
)

// Assignment is the part of an assignment record the grader needs
type Assignment struct {
	ID          int64       `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Domain      string      `db:"domain" json:"domain"`
	Difficulty  string      `db:"difficulty" json:"difficulty"`
	ProblemType ProblemType `db:"problem_type" json:"problem_type"`
	Language    *string     `db:"language" json:"language"`
	SQLSchema   *string     `db:"sql_schema" json:"sql_schema"`
	SQLQuery    *string     `db:"sql_query" json:"-"`
}

type AssignmentTable struct {
	ID          string
	Title       string
	Description string
	Domain      string
	Difficulty  string
	ProblemType string
	Language    string
	SQLSchema   string
	SQLQuery    string
}

func GetAssignmentTable() AssignmentTable {
	return AssignmentTable{
		ID:          "id",
		Title:       "title",
		Description: "description",
		Domain:      "domain",
		Difficulty:  "difficulty",
		ProblemType: "problem_type",
		Language:    "language",
		SQLSchema:   "sql_schema",
		SQLQuery:    "sql_query",
	}
}

func (AssignmentTable) TableName() string {
	return "assignments"
}

// TestCaseKind returns the kind of test case this assignment owns
func (a *Assignment) TestCaseKind() TestCaseKind {
	if a.ProblemType == ProblemTypeSQL {
		return TestCaseKindSQL
	}
	return TestCaseKindCoding
}

// AssignmentStats summarizes submissions made against an assignment
type AssignmentStats struct {
	TotalSubmissions  int `db:"total_submissions" json:"total_submissions"`
	PassedSubmissions int `db:"passed_submissions" json:"passed_submissions"`
	FailedSubmissions int `db:"failed_submissions" json:"failed_submissions"`
	UniqueSubmitters  int `db:"unique_submitters" json:"submitted"`
}
