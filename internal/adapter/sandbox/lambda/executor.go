// Package lambda runs programs by invoking an AWS Lambda function that hosts the
// interpreter.
package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/go-playground/validator/v10"

	"gitlab.com/fcv-grader.net/internal/config"
	"gitlab.com/fcv-grader.net/internal/core/ports/primary"
	"gitlab.com/fcv-grader.net/internal/core/ports/secondary"
	"gitlab.com/fcv-grader.net/internal/core/services/normalizer"
	"gitlab.com/fcv-grader.net/internal/domain"
)

var _ secondary.CodeExecutor = (*Executor)(nil)

// Invoker is the part of the lambda client the executor needs
type Invoker interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

type invokePayload struct {
	Language       string `json:"language"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type invokeResult struct {
	Success       *bool    `json:"success" validate:"required"`
	Output        string   `json:"output"`
	Error         *string  `json:"error"`
	ExecutionTime *float64 `json:"execution_time" validate:"required,gte=0"`
}

type Executor struct {
	cfg      *config.LambdaConfig
	invoker  Invoker
	validate *validator.Validate
	logger   primary.Logger
}

// NewExecutor loads the default AWS credentials chain for the configured region
func NewExecutor(ctx context.Context, cfg *config.LambdaConfig, logger primary.Logger) (*Executor, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewExecutorWithInvoker(cfg, awslambda.NewFromConfig(awsCfg), logger), nil
}

func NewExecutorWithInvoker(cfg *config.LambdaConfig, invoker Invoker, logger primary.Logger) *Executor {
	return &Executor{
		cfg:      cfg,
		invoker:  invoker,
		validate: validator.New(),
		logger:   logger,
	}
}

func (e *Executor) Execute(ctx context.Context, req domain.ExecutionRequest) domain.ExecutionResult {
	payload, err := json.Marshal(invokePayload{
		Language:       strings.ToLower(string(req.Language)),
		SourceCode:     req.SourceCode,
		Stdin:          req.Stdin,
		TimeoutSeconds: req.TimeoutSeconds(),
	})
	if err != nil {
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), "", 0)
	}

	start := time.Now()
	out, err := e.invoker.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(e.cfg.FunctionName),
		Payload:      payload,
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		e.logger.Error("Failed to invoke lambda", "function", e.cfg.FunctionName, "error", err)
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Execution error: %v", err), "", elapsed)
	}
	if out.FunctionError != nil {
		e.logger.Error("Lambda function failed", "function", e.cfg.FunctionName, "function_error", *out.FunctionError)
		return domain.Failed(domain.ErrorKindTransport,
			fmt.Sprintf("Lambda function error: %s", normalizer.FirstNonEmpty(string(out.Payload), *out.FunctionError)), "", elapsed)
	}

	res, err := e.decode(out.Payload)
	if err != nil {
		e.logger.Error("Failed to decode lambda payload", "error", err)
		return domain.Failed(domain.ErrorKindTransport, fmt.Sprintf("Invalid lambda response: %v", err), "", elapsed)
	}

	if *res.Success {
		return domain.Succeeded(res.Output, *res.ExecutionTime)
	}
	msg := "Execution failed"
	if res.Error != nil {
		msg = normalizer.FirstNonEmpty(*res.Error, msg)
	}
	return domain.Failed(domain.ErrorKindRuntime, msg, res.Output, *res.ExecutionTime)
}

func (e *Executor) decode(payload []byte) (*invokeResult, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var res invokeResult
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if err := e.validate.Struct(res); err != nil {
		return nil, fmt.Errorf("failed to validate payload: %w", err)
	}
	return &res, nil
}
