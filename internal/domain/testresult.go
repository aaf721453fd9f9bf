package domain

import "encoding/json"

// CodingOutcome represents the result of a single coding test case
type CodingOutcome struct {
	TestID         int     `json:"test_id"`
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	ActualOutput   string  `json:"actual_output"`
	Passed         bool    `json:"passed"`
	Error          *string `json:"error"`
	Hidden         bool    `json:"hidden"`
}

// SQLOutcome represents the result of comparing the query result against one test case
type SQLOutcome struct {
	TestID         int    `json:"test_id"`
	Passed         bool   `json:"passed"`
	Message        string `json:"message"`
	ExpectedResult any    `json:"expected_result,omitempty"`
	ActualResult   any    `json:"actual_result,omitempty"`
	Hidden         bool   `json:"hidden"`
}

// GradingVerdict is the aggregated result of grading one submission.
// It is built by a grader and not modified after being returned.
type GradingVerdict struct {
	Kind           TestCaseKind
	Success        bool
	TotalTests     int
	PassedTests    int
	CodingOutcomes []CodingOutcome
	SQLOutcomes    []SQLOutcome
	FirstCodeError *string
	FirstErrorKind ErrorKind
}

// NewGradingVerdict creates an empty verdict with room for n outcomes
func NewGradingVerdict(kind TestCaseKind, n int) *GradingVerdict {
	v := &GradingVerdict{Kind: kind}
	switch kind {
	case TestCaseKindSQL:
		v.SQLOutcomes = make([]SQLOutcome, 0, n)
	default:
		v.CodingOutcomes = make([]CodingOutcome, 0, n)
	}
	return v
}

func (v *GradingVerdict) AddCodingOutcome(o CodingOutcome) {
	v.CodingOutcomes = append(v.CodingOutcomes, o)
	if o.Passed {
		v.PassedTests++
	}
}

func (v *GradingVerdict) AddSQLOutcome(o SQLOutcome) {
	v.SQLOutcomes = append(v.SQLOutcomes, o)
	if o.Passed {
		v.PassedTests++
	}
}

// RecordCodeError keeps the first non-output error of the run; later calls are ignored
func (v *GradingVerdict) RecordCodeError(kind ErrorKind, msg string) {
	if v.FirstCodeError != nil {
		return
	}
	v.FirstCodeError = &msg
	v.FirstErrorKind = kind
}

// Finish derives the totals from the recorded outcomes
func (v *GradingVerdict) Finish() *GradingVerdict {
	v.TotalTests = len(v.CodingOutcomes) + len(v.SQLOutcomes)
	v.Success = v.PassedTests == v.TotalTests
	return v
}

// Abort marks a run that stopped before any test case was evaluated.
// TotalTests still reports how many test cases the submission had.
func (v *GradingVerdict) Abort(total int, kind ErrorKind, msg string) *GradingVerdict {
	v.Success = false
	v.TotalTests = total
	v.PassedTests = 0
	v.CodingOutcomes = v.CodingOutcomes[:0]
	v.SQLOutcomes = v.SQLOutcomes[:0]
	v.RecordCodeError(kind, msg)
	return v
}

// Score is the percentage stored with a submission: full marks only when every test passed
func (v *GradingVerdict) Score() int {
	if v.Success {
		return 100
	}
	return 0
}

// HiddenFailureMessage replaces diagnostics of hidden test cases, which may echo their data
const HiddenFailureMessage = "Hidden test case failed"

// Redacted returns a copy with hidden test case data blanked out
func (v *GradingVerdict) Redacted() *GradingVerdict {
	out := *v
	if v.CodingOutcomes != nil {
		out.CodingOutcomes = make([]CodingOutcome, len(v.CodingOutcomes))
		firstErrorSeen := false
		for i, o := range v.CodingOutcomes {
			if o.Hidden {
				o.Input = ""
				o.ExpectedOutput = ""
				o.ActualOutput = ""
				if o.Error != nil {
					msg := HiddenFailureMessage
					o.Error = &msg
				}
			}
			// the first failing outcome is where the verdict's code error came from
			if o.Error != nil && !firstErrorSeen {
				firstErrorSeen = true
				if o.Hidden && v.FirstCodeError != nil {
					msg := HiddenFailureMessage
					out.FirstCodeError = &msg
				}
			}
			out.CodingOutcomes[i] = o
		}
	}
	if v.SQLOutcomes != nil {
		out.SQLOutcomes = make([]SQLOutcome, len(v.SQLOutcomes))
		for i, o := range v.SQLOutcomes {
			if o.Hidden {
				o.ExpectedResult = nil
				o.ActualResult = nil
				if !o.Passed {
					o.Message = HiddenFailureMessage
				}
			}
			out.SQLOutcomes[i] = o
		}
	}
	return &out
}

type verdictWire struct {
	Kind           TestCaseKind    `json:"kind"`
	Success        bool            `json:"success"`
	TotalTests     int             `json:"total_tests"`
	PassedTests    int             `json:"passed_tests"`
	Results        json.RawMessage `json:"results"`
	FirstCodeError *string         `json:"code_error"`
	FirstErrorKind ErrorKind       `json:"error_kind,omitempty"`
}

func (v GradingVerdict) MarshalJSON() ([]byte, error) {
	kind := v.Kind
	if kind == "" {
		kind = TestCaseKindCoding
	}
	var results any = []CodingOutcome{}
	switch {
	case kind == TestCaseKindSQL && len(v.SQLOutcomes) > 0:
		results = v.SQLOutcomes
	case kind != TestCaseKindSQL && len(v.CodingOutcomes) > 0:
		results = v.CodingOutcomes
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}
	return json.Marshal(verdictWire{
		Kind:           kind,
		Success:        v.Success,
		TotalTests:     v.TotalTests,
		PassedTests:    v.PassedTests,
		Results:        raw,
		FirstCodeError: v.FirstCodeError,
		FirstErrorKind: v.FirstErrorKind,
	})
}

func (v *GradingVerdict) UnmarshalJSON(data []byte) error {
	var w verdictWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind := w.Kind
	if kind == "" {
		kind = TestCaseKindCoding
	}
	*v = *NewGradingVerdict(kind, 0)
	v.Success = w.Success
	v.TotalTests = w.TotalTests
	v.PassedTests = w.PassedTests
	v.FirstCodeError = w.FirstCodeError
	v.FirstErrorKind = w.FirstErrorKind
	if len(w.Results) == 0 || string(w.Results) == "null" {
		return nil
	}
	if kind == TestCaseKindSQL {
		return json.Unmarshal(w.Results, &v.SQLOutcomes)
	}
	return json.Unmarshal(w.Results, &v.CodingOutcomes)
}
