package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"brigade/pkg/client"
	"brigade/pkg/config"
	"brigade/pkg/kafka"
	"brigade/pkg/model"
)

// Gateway is the outbound text-message delivery service.
type Gateway interface {
	POST(ctx context.Context, path string, body any) (*client.Response, error)
}

// gatewayPayload is the message gateway's send contract.
type gatewayPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Dispatcher consumes outbound messages from Kafka and delivers them through
// the message gateway. Delivery failures surface as retryable errors so the
// consumer's retry/DLQ machinery handles them.
type Dispatcher struct {
	gateway Gateway
	cfg     *config.Config
}

func NewDispatcher(gateway Gateway, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		cfg:     cfg,
	}
}

// Handle is the kafka.MessageHandler for the outbound topic.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	var outbound model.OutboundMessage
	if err := json.Unmarshal(msg.Value, &outbound); err != nil {
		// Malformed payloads can never succeed; let them fall to the DLQ
		// without retries.
		return fmt.Errorf("%w: %v", kafka.ErrInvalidMessage, err)
	}

	if outbound.ToPhone == "" || outbound.Body == "" {
		return fmt.Errorf("%w: missing recipient or body", kafka.ErrInvalidMessage)
	}

	resp, err := d.gateway.POST(ctx, "/api/v1/messages", gatewayPayload{
		To:   outbound.ToPhone,
		Body: outbound.Body,
	})
	if err != nil {
		return fmt.Errorf("gateway delivery failed: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		// Phrased so the retry classifier treats gateway outages as transient.
		return fmt.Errorf("gateway returned %d: temporary failure", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		// Client errors will not heal on retry.
		return fmt.Errorf("%w: gateway rejected message with %d", kafka.ErrInvalidMessage, resp.StatusCode)
	}

	d.cfg.Log.Info("Outbound message delivered",
		"kind", outbound.Kind,
		"request_id", outbound.RequestID,
		"event_id", outbound.EventID,
	)
	return nil
}
