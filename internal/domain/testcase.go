package domain

// TestCaseKind tells which grader a test case belongs to
type TestCaseKind string

const (
	TestCaseKindCoding TestCaseKind = "coding"
	TestCaseKindSQL    TestCaseKind = "sql"
)

// TestCase represents a test case owned by an assignment.
// Coding test cases use Input/ExpectedOutput, SQL test cases use ExpectedResult (JSON text).
type TestCase struct {
	ID             int64        `db:"id" json:"id"`
	AssignmentID   int64        `db:"assignment_id" json:"assignment_id"`
	Kind           TestCaseKind `db:"-" json:"kind"`
	Input          string       `db:"input" json:"input"`
	ExpectedOutput string       `db:"expected_output" json:"expected_output"`
	ExpectedResult string       `db:"expected_result" json:"expected_result"`
	Hidden         bool         `db:"hidden" json:"hidden"`
}

type TestCaseTable struct {
	ID             string
	AssignmentID   string
	Input          string
	ExpectedOutput string
	ExpectedResult string
	Hidden         string
}

func GetTestCaseTable() TestCaseTable {
	return TestCaseTable{
		ID:             "id",
		AssignmentID:   "assignment_id",
		Input:          "input",
		ExpectedOutput: "expected_output",
		ExpectedResult: "expected_result",
		Hidden:         "hidden",
	}
}

func (TestCaseTable) TableName() string {
	return "testcases"
}

// Redacted returns a copy safe to show to the submitter
func (t TestCase) Redacted() TestCase {
	if !t.Hidden {
		return t
	}
	t.Input = ""
	t.ExpectedOutput = ""
	t.ExpectedResult = ""
	return t
}
