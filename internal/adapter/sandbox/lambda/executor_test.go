package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-grader.net/internal/adapter/logging"
	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/domain"
)

type fakeInvoker struct {
	input *awslambda.InvokeInput
	out   *awslambda.InvokeOutput
	err   error
}

func (f *fakeInvoker) Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error) {
	f.input = params
	return f.out, f.err
}

func newExecutor(inv *fakeInvoker) *Executor {
	cfg := &config.LambdaConfig{FunctionName: "grader-runner", Region: "ap-south-1"}
	return NewExecutorWithInvoker(cfg, inv, logging.NewNopLogger())
}

func pyRequest() domain.ExecutionRequest {
	return domain.NewExecutionRequest(domain.LanguagePython, "print(input())", "hi", 3*time.Second)
}

func TestExecuteSendsPayload(t *testing.T) {
	inv := &fakeInvoker{out: &awslambda.InvokeOutput{Payload: []byte(`{"success":true,"output":"hi\n","error":null,"execution_time":0.04}`)}}

	res := newExecutor(inv).Execute(t.Context(), pyRequest())

	require.True(t, res.Succeeded)
	assert.Equal(t, "hi\n", res.Stdout)
	assert.InDelta(t, 0.04, res.ElapsedSeconds, 1e-9)

	require.NotNil(t, inv.input)
	assert.Equal(t, "grader-runner", aws.ToString(inv.input.FunctionName))
	var sent map[string]any
	require.NoError(t, json.Unmarshal(inv.input.Payload, &sent))
	assert.Equal(t, map[string]any{
		"language":        "python",
		"source_code":     "print(input())",
		"stdin":           "hi",
		"timeout_seconds": float64(3),
	}, sent)
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name    string
		inv     *fakeInvoker
		kind    domain.ErrorKind
		message string
	}{{
		name:    "program failure",
		inv:     &fakeInvoker{out: &awslambda.InvokeOutput{Payload: []byte(`{"success":false,"output":"x","error":"NameError: y","execution_time":0.01}`)}},
		kind:    domain.ErrorKindRuntime,
		message: "NameError: y",
	}, {
		name:    "invoke error",
		inv:     &fakeInvoker{err: errors.New("throttled")},
		kind:    domain.ErrorKindTransport,
		message: "Execution error: throttled",
	}, {
		name:    "function error",
		inv:     &fakeInvoker{out: &awslambda.InvokeOutput{FunctionError: aws.String("Unhandled"), Payload: []byte(`{"errorMessage":"oops"}`)}},
		kind:    domain.ErrorKindTransport,
		message: `Lambda function error: {"errorMessage":"oops"}`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newExecutor(tt.inv).Execute(t.Context(), pyRequest())
			assert.False(t, res.Succeeded)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.message, res.ErrorMessage)
		})
	}
}

func TestExecuteRejectsMalformedPayload(t *testing.T) {
	payloads := []string{
		`{"success":true,"output":"1","execution_time":0.1,"__import__":"os"}`,
		`{"output":"1","execution_time":0.1}`,
		`{"success":true,"output":"1"}`,
		`{"success":true,"output":"1","execution_time":-1}`,
		`print("not json")`,
	}

	for _, payload := range payloads {
		inv := &fakeInvoker{out: &awslambda.InvokeOutput{Payload: []byte(payload)}}
		res := newExecutor(inv).Execute(t.Context(), pyRequest())

		assert.False(t, res.Succeeded, payload)
		assert.Equal(t, domain.ErrorKindTransport, res.Kind, payload)
		assert.Contains(t, res.ErrorMessage, "Invalid lambda response", payload)
	}
}
