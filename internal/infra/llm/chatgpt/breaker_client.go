package chatgpt

import (
	"context"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/trailfinder/internal/infra/breaker"
)

type completer interface {
	CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// BreakerClient guards a completion client with a circuit breaker.
type BreakerClient struct {
	client completer
	cb     *gobreaker.CircuitBreaker[ChatCompletionResponse]
}

// NewBreakerClient wraps client.
func NewBreakerClient(client *Client, cb *gobreaker.CircuitBreaker[ChatCompletionResponse]) *BreakerClient {
	return &BreakerClient{client: client, cb: cb}
}

// CreateChatCompletion forwards to the wrapped client unless the circuit is open.
func (b *BreakerClient) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	return breaker.Execute(b.cb, func() (ChatCompletionResponse, error) {
		return b.client.CreateChatCompletion(ctx, req)
	})
}
