package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"defi-nlu/internal/common/config"
	"defi-nlu/internal/common/logger"
)

type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 10,
	BaseDelay:   2 * time.Second,
	MaxDelay:    30 * time.Second,
}

// Connect dials the gateway and checks the topology before returning.
func Connect(ctx context.Context, cfg config.CamundaConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{
		client:         zeebeClient,
		requestTimeout: config.GetDuration(cfg.RequestTimeout),
	}
	if err := c.HealthCheck(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

func (c *Client) Zeebe() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs op until it succeeds, doubling the delay between attempts up
// to MaxDelay. It is used for every startup dependency, not only Zeebe.
func Retry(ctx context.Context, rc RetryConfig, name string, log logger.Logger, op func(context.Context) error) error {
	if rc.MaxAttempts <= 0 {
		rc.MaxAttempts = 1
	}

	var err error
	delay := rc.BaseDelay
	for attempt := 1; attempt <= rc.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == rc.MaxAttempts {
			break
		}

		log.WithError(err).Warn(name+" failed, retrying", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": rc.MaxAttempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", name, attempt, ctx.Err())
		}

		delay *= 2
		if rc.MaxDelay > 0 && delay > rc.MaxDelay {
			delay = rc.MaxDelay
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, rc.MaxAttempts, err)
}
