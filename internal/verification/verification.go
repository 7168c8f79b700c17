// Package verification defines the pluggable verification contract and the
// dispatcher that routes a request to the right flow. A flow proves that the
// caller is who the candidate identities say they are; how it proves it is
// the plugin's business.
package verification

import "context"

// PluginType selects a verification strategy.
type PluginType string

const (
	PluginFingerprint PluginType = "FINGERPRINT"
	PluginSMSOTP      PluginType = "SMS_OTP"
	PluginToken       PluginType = "TOKEN"
)

// Statuses of a normalized verification result.
const (
	StatusMatched    = "matched"
	StatusSent       = "sent"
	StatusNotMatched = "not_matched"
)

// Result is the normalized outcome every flow returns. ID is empty for the
// SMS send phase, where nothing has been proven yet.
type Result struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// Filters carry the caller-supplied external identifiers used to resolve
// candidate identities.
type Filters struct {
	ExternalIDs map[string]string `json:"externalIds"`
}

// Params is the union of per-plugin verification inputs. Each flow reads only
// the fields it understands and ignores the rest.
type Params struct {
	// SMS flow. PhoneNumber present selects the send phase, Otp the verify
	// phase. AuthKey is an optional authorization token rate limited ahead of
	// the identity.
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Otp         string `json:"otp,omitempty"`
	AuthKey     string `json:"authKey,omitempty"`

	// Fingerprint flow. Exactly one of Image and Template carries the probe.
	Position string `json:"position,omitempty"`
	Image    string `json:"image,omitempty"`
	Template string `json:"template,omitempty"`

	// Token flow.
	Token string `json:"token,omitempty"`

	// Enrollment payloads for fingerprint save.
	Biometrics []Biometric `json:"biometrics,omitempty"`
}

// Biometric is one enrollment payload.
type Biometric struct {
	Position string `json:"position"`
	Image    string `json:"image"`
}

// Flow is the capability set every verification plugin implements.
type Flow interface {
	// Verify proves the caller against the candidate identities and returns
	// a normalized result.
	Verify(ctx context.Context, candidates []string, params Params, filters Filters) (Result, error)
	// Save registers plugin-specific material for an identity. Flows without
	// a registration path return NOT_IMPLEMENTED.
	Save(ctx context.Context, agentID string, params Params) error
}
