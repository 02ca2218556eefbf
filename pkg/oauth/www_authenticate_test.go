package oauth

import "testing"

func TestChallengeFormat(t *testing.T) {
	tests := []struct {
		name      string
		challenge Challenge
		expected  string
	}{
		{
			name:      "empty",
			challenge: Challenge{},
			expected:  "Bearer",
		},
		{
			name:      "realm only",
			challenge: Challenge{Realm: "https://gw.example.com"},
			expected:  `Bearer realm="https://gw.example.com"`,
		},
		{
			name: "error with description",
			challenge: Challenge{
				Error:            "invalid_token",
				ErrorDescription: "token expired",
			},
			expected: `Bearer error="invalid_token", error_description="token expired"`,
		},
		{
			name: "full challenge",
			challenge: Challenge{
				Realm:               "https://gw.example.com",
				Error:               "invalid_request",
				ResourceMetadataURL: "https://gw.example.com/.well-known/oauth-protected-resource",
			},
			expected: `Bearer realm="https://gw.example.com", error="invalid_request", resource_metadata="https://gw.example.com/.well-known/oauth-protected-resource"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.challenge.Format(); got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}
