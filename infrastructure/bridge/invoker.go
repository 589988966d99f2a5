package bridge

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaAPI is the slice of the Lambda client the invoker needs.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaInvoker invokes the bridge function synchronously. This is the
// "network call that isn't a network call": the managed invocation platform
// substitutes for a TCP connection into the database's VPC.
type LambdaInvoker struct {
	client       LambdaAPI
	functionName string
}

// NewLambdaInvoker creates an invoker for the named bridge function.
func NewLambdaInvoker(client LambdaAPI, functionName string) *LambdaInvoker {
	return &LambdaInvoker{
		client:       client,
		functionName: functionName,
	}
}

// Invoke performs one synchronous request/response invocation. A function
// error reported by the platform is a transport-level failure: it means the
// bridge process itself broke, not that a query failed.
func (i *LambdaInvoker) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	out, err := i.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(i.functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, err
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("bridge function error: %s", aws.ToString(out.FunctionError))
	}
	return out.Payload, nil
}
