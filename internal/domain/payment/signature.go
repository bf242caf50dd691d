package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"Wanderfund/internal/domain/shared"
	appErrors "Wanderfund/internal/errors"
)

const defaultStripeTolerance = 5 * time.Minute

// WebhookSecrets holds per-provider verification material. An empty secret
// disables verification for that provider unless the verifier requires
// secrets.
type WebhookSecrets struct {
	Generic         string
	Mpesa           string
	Stripe          string
	Flutterwave     string
	Bank            string
	StripeTolerance time.Duration
}

type Verifier struct {
	Secrets WebhookSecrets
	// RequireSecrets rejects deliveries for providers without a secret.
	RequireSecrets bool
	Clock          shared.Clock
}

// ErrSecretNotConfigured rejects deliveries a required secret cannot verify.
var ErrSecretNotConfigured = appErrors.ErrInvalidSignature.WithMessage("Webhook secret not configured")

func (v *Verifier) Verify(provider Provider, header http.Header, body []byte) error {
	secret, ok := v.secret(provider)
	if !ok {
		return appErrors.ErrUnknownProvider
	}
	if secret == "" {
		if v.RequireSecrets {
			return ErrSecretNotConfigured
		}
		return nil
	}

	switch provider {
	case ProviderMpesa:
		return matchHMAC(secret, body, header.Get("Signature"))
	case ProviderStripe:
		return v.verifyStripe(header.Get("Stripe-Signature"), body)
	case ProviderFlutterwave:
		return matchSecret(secret, header.Get("verif-hash"))
	case ProviderBank:
		return matchSecret(secret, header.Get("X-Api-Key"))
	}
	return matchSecret(secret, header.Get("X-Webhook-Token"))
}

// Missing reports the webhook providers that have no secret configured.
func (v *Verifier) Missing() []Provider {
	var out []Provider
	for _, p := range []Provider{ProviderGeneric, ProviderMpesa, ProviderStripe, ProviderFlutterwave, ProviderBank} {
		if secret, _ := v.secret(p); secret == "" {
			out = append(out, p)
		}
	}
	return out
}

func (v *Verifier) secret(provider Provider) (string, bool) {
	switch provider {
	case ProviderGeneric:
		return v.Secrets.Generic, true
	case ProviderMpesa:
		return v.Secrets.Mpesa, true
	case ProviderStripe:
		return v.Secrets.Stripe, true
	case ProviderFlutterwave:
		return v.Secrets.Flutterwave, true
	case ProviderBank:
		return v.Secrets.Bank, true
	}
	return "", false
}

// verifyStripe checks a "t=<unix>,v1=<hex>" header where v1 is the HMAC of
// "<t>.<body>". Any matching v1 entry is accepted.
func (v *Verifier) verifyStripe(sigHeader string, body []byte) error {
	if sigHeader == "" {
		return appErrors.ErrInvalidSignature
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return appErrors.ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return appErrors.ErrInvalidSignature
	}
	tolerance := v.Secrets.StripeTolerance
	if tolerance <= 0 {
		tolerance = defaultStripeTolerance
	}
	age := v.Clock.Now().Sub(time.Unix(unix, 0))
	if age > tolerance || age < -tolerance {
		return appErrors.ErrInvalidSignature.WithMessage("Webhook timestamp outside tolerance")
	}

	payload := append([]byte(timestamp+"."), body...)
	for _, sig := range signatures {
		if matchHMAC(v.Secrets.Stripe, payload, sig) == nil {
			return nil
		}
	}
	return appErrors.ErrInvalidSignature
}

func matchSecret(secret, got string) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(got)) != 1 {
		return appErrors.ErrInvalidSignature
	}
	return nil
}

func matchHMAC(secret string, payload []byte, gotHex string) error {
	got, err := hex.DecodeString(strings.TrimSpace(gotHex))
	if err != nil || len(got) == 0 {
		return appErrors.ErrInvalidSignature
	}
	if !hmac.Equal(got, Sign(secret, payload)) {
		return appErrors.ErrInvalidSignature
	}
	return nil
}

// Sign returns the raw HMAC-SHA256 of payload.
func Sign(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}
