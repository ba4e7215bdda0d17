package sms

import (
	"context"
	"testing"

	"github.com/psyconnect/psyconnect_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: false,
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "",
			SecretKey:  "",
			TemplateID: "test-template",
		},
	}

	_, err := NewFromConfig(cfg)
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewFromConfig_EnabledWithAPIKey(t *testing.T) {
	cfg := config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:     "test-api-key",
			SecretKey:  "test-secret-key",
			TemplateID: "test-template",
		},
	}

	client, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
}

func TestSendAppointmentAlert_DisabledClient(t *testing.T) {
	client := &Client{enabled: false}

	err := client.SendAppointmentAlert(context.Background(), "+989121234567", "template-id", "2026-03-10 14:00")
	if err != nil {
		t.Errorf("Expected no error for disabled client, got: %v", err)
	}
}

func TestSendAppointmentAlert_Validation(t *testing.T) {
	client := &Client{enabled: true}

	tests := []struct {
		name        string
		phone       string
		templateID  string
		expectError bool
	}{
		{
			name:        "empty phone number",
			phone:       "",
			templateID:  "template-id",
			expectError: true,
		},
		{
			name:        "empty template ID",
			phone:       "+989121234567",
			templateID:  "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.SendAppointmentAlert(context.Background(), tt.phone, tt.templateID, "2026-03-10 14:00")
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{
			name:   "already E164",
			raw:    "+989121234567",
			region: "IR",
			want:   "+989121234567",
		},
		{
			name:   "national format with default region",
			raw:    "09121234567",
			region: "",
			want:   "+989121234567",
		},
		{
			name:    "garbage input",
			raw:     "not-a-number",
			region:  "IR",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, tt.region)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled client", true},
		{"disabled client", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &Client{enabled: tt.enabled}
			if client.IsEnabled() != tt.enabled {
				t.Errorf("Expected IsEnabled() = %v, got %v", tt.enabled, client.IsEnabled())
			}
		})
	}
}
