package sms

import (
	"context"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/psyconnect/psyconnect_backend/config"
)

// Client provides SMS sending functionality via sms.ir.
type Client struct {
	client  *smsir.Client
	enabled bool
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:  client,
		enabled: true,
	}, nil
}

// SendAppointmentAlert sends a templated appointment notification with the
// session time. If SMS is disabled, this is a no-op and returns nil.
//
// The template must have a parameter named "date" for the session time.
func (c *Client) SendAppointmentAlert(ctx context.Context, phoneNumber, templateID, date string) error {
	if !c.enabled {
		return nil
	}

	if phoneNumber == "" {
		return fmt.Errorf("phone number is required")
	}
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     phoneNumber,
		TemplateID: templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "date", Value: date},
		},
	}

	_, err := c.client.Verification.UltraFastSend(ctx, req)
	if err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// NormalizePhone converts raw into E.164 form, defaulting to region when the
// number carries no country code.
func NormalizePhone(raw, region string) (string, error) {
	if region == "" {
		region = "IR"
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
