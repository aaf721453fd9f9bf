package judge0

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type submissionRequest struct {
	LanguageID    int    `json:"language_id"`
	SourceCode    string `json:"source_code"`
	Stdin         string `json:"stdin"`
	CPUTimeLimit  int    `json:"cpu_time_limit"`
	CPUExtraTime  int    `json:"cpu_extra_time"`
	WallTimeLimit int    `json:"wall_time_limit"`
	MemoryLimit   int    `json:"memory_limit"`
	StackLimit    int    `json:"stack_limit"`
	MaxFileSize   int    `json:"max_file_size"`
}

type submissionToken struct {
	Token string `json:"token"`
}

type status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// submission is the polled state. Text fields are base64 encoded.
type submission struct {
	Token         string  `json:"token"`
	Status        status  `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Message       string  `json:"message"`
	Time          seconds `json:"time"`
}

// seconds accepts "0.012", 0.012 and null
type seconds float64

func (s *seconds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = 0
		return nil
	}
	if b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			*s = 0
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*s = seconds(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = seconds(f)
	return nil
}
