package stripe

import (
	"context"
	"testing"

	"github.com/mmfactory/pizzeria-backend/pkg/config"
)

func TestNewClientValidatesKeyAgainstEnv(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StripeConfig
		wantErr bool
	}{
		{
			name: "test env with test key",
			cfg:  config.StripeConfig{APIKey: "sk_test_abc", Secret: "whsec_abc", Env: "test"},
		},
		{
			name:    "test env with live key",
			cfg:     config.StripeConfig{APIKey: "sk_live_abc", Secret: "whsec_abc", Env: "test"},
			wantErr: true,
		},
		{
			name:    "missing api key",
			cfg:     config.StripeConfig{Secret: "whsec_abc", Env: "test"},
			wantErr: true,
		},
		{
			name:    "missing webhook secret",
			cfg:     config.StripeConfig{APIKey: "sk_test_abc", Env: "test"},
			wantErr: true,
		},
		{
			name:    "unknown environment",
			cfg:     config.StripeConfig{APIKey: "sk_test_abc", Secret: "whsec_abc", Env: "staging"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tc.cfg, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.SigningSecret() != tc.cfg.Secret {
				t.Fatalf("signing secret not retained")
			}
			if client.Environment() != "test" {
				t.Fatalf("expected normalized env test, got %q", client.Environment())
			}
		})
	}
}
