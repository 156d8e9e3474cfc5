package compute

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// lambdaAPI is the subset of *lambda.Client used here.
type lambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

type LambdaOptions struct {
	FunctionName string
	Region       string
}

type lambdaBackend struct {
	client       lambdaAPI
	functionName string
}

func NewLambdaBackend(ctx context.Context, opts LambdaOptions) (Backend, error) {
	fn := strings.TrimSpace(opts.FunctionName)
	if fn == "" {
		return nil, errors.New("lambda function name required")
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region := strings.TrimSpace(opts.Region); region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newLambdaBackendWithClient(lambda.NewFromConfig(cfg), fn), nil
}

func newLambdaBackendWithClient(client lambdaAPI, functionName string) *lambdaBackend {
	return &lambdaBackend{client: client, functionName: functionName}
}

func (b *lambdaBackend) Name() string { return string(ModeLambda) }

func (b *lambdaBackend) Invoke(ctx context.Context, in Request) (*Response, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode lambda payload: %w", err)
	}

	out, err := b.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(b.functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke lambda %s: %w", b.functionName, err)
	}

	fnErr := aws.ToString(out.FunctionError)
	if out.StatusCode != http.StatusOK || fnErr != "" {
		return nil, newBackendError(int(out.StatusCode), fnErr, out.Payload)
	}

	res, err := decodeResponse(out.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode lambda payload: %w", err)
	}
	return res, nil
}
