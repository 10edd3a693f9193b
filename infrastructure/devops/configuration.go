package devops

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterAPI is the part of the SSM client used here.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var (
	mu       sync.Mutex
	profiles = map[string][]byte{}
)

// LoadProfile fetches a decrypted SSM parameter holding a YAML config
// profile. Results are cached per name for the life of the process.
func LoadProfile(ctx context.Context, paramName string) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	if body, ok := profiles[paramName]; ok {
		return body, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	body, err := GetParameter(ctx, ssm.NewFromConfig(cfg), paramName)
	if err != nil {
		return nil, err
	}
	profiles[paramName] = body
	return body, nil
}

func GetParameter(ctx context.Context, client ParameterAPI, paramName string) ([]byte, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("parameter %s has no value", paramName)
	}
	return []byte(*out.Parameter.Value), nil
}
