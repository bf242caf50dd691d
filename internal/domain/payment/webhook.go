package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	appErrors "Wanderfund/internal/errors"
	"Wanderfund/internal/pkg"

	"github.com/oklog/ulid/v2"
)

// WebhookEvent is a provider callback normalized to one transaction outcome.
type WebhookEvent struct {
	TransactionID ulid.ULID
	Outcome       Outcome
	Reference     string
	Provider      Provider
	EventType     string
	// Ignored marks event types that are acknowledged without any write.
	Ignored bool
}

// ParseWebhook normalizes a provider payload. Unknown fields are tolerated.
func ParseWebhook(provider Provider, body []byte) (*WebhookEvent, error) {
	switch provider {
	case ProviderGeneric:
		return parseGeneric(body)
	case ProviderMpesa:
		return parseMpesa(body)
	case ProviderStripe:
		return parseStripe(body)
	case ProviderFlutterwave:
		return parseFlutterwave(body)
	case ProviderBank:
		return parseBank(body)
	}
	return nil, appErrors.ErrUnknownProvider.WithDetails(map[string]interface{}{
		"provider": string(provider),
	})
}

type genericPayload struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Reference     string `json:"reference"`
	Provider      string `json:"provider"`
}

func parseGeneric(body []byte) (*WebhookEvent, error) {
	var p genericPayload
	if err := decode(body, &p); err != nil {
		return nil, err
	}

	outcome, ok := normalizeStatus(p.Status)
	if !ok {
		return nil, invalidWebhook("status", fmt.Sprintf("unsupported status %q", p.Status))
	}
	id, err := transactionID(p.TransactionID)
	if err != nil {
		return nil, err
	}

	provider := ProviderGeneric
	if p.Provider != "" {
		provider = Provider(strings.ToLower(p.Provider))
	}
	return &WebhookEvent{
		TransactionID: id,
		Outcome:       outcome,
		Reference:     p.Reference,
		Provider:      provider,
		EventType:     "status." + string(outcome),
	}, nil
}

type mpesaItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

type mpesaCallback struct {
	MerchantRequestID  string `json:"MerchantRequestID"`
	CheckoutRequestID  string `json:"CheckoutRequestID"`
	TransactionID      string `json:"TransactionID"`
	MpesaReceiptNumber string `json:"MpesaReceiptNumber"`
	ResultCode         *int   `json:"ResultCode"`
	ResultDesc         string `json:"ResultDesc"`
	CallbackMetadata   struct {
		Item []mpesaItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type mpesaEnvelope struct {
	mpesaCallback
	Body *struct {
		StkCallback *mpesaCallback `json:"stkCallback"`
	} `json:"Body"`
}

// parseMpesa accepts the STK push callback, either bare or wrapped in
// Body.stkCallback, and the plain payment confirmation carrying TransactionID.
func parseMpesa(body []byte) (*WebhookEvent, error) {
	var env mpesaEnvelope
	if err := decode(body, &env); err != nil {
		return nil, err
	}

	cb := env.mpesaCallback
	if env.Body != nil && env.Body.StkCallback != nil {
		cb = *env.Body.StkCallback
	}
	if cb.ResultCode == nil {
		return nil, invalidWebhook("ResultCode", "is required")
	}

	rawID := cb.TransactionID
	if rawID == "" {
		rawID = cb.MerchantRequestID
	}
	id, err := transactionID(rawID)
	if err != nil {
		return nil, err
	}

	reference := cb.MpesaReceiptNumber
	for _, item := range cb.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			var v string
			if json.Unmarshal(item.Value, &v) == nil {
				reference = v
			}
		}
	}
	if reference == "" {
		reference = cb.CheckoutRequestID
	}

	outcome := OutcomeSuccess
	if *cb.ResultCode != 0 {
		outcome = OutcomeFailed
	}
	return &WebhookEvent{
		TransactionID: id,
		Outcome:       outcome,
		Reference:     reference,
		Provider:      ProviderMpesa,
		EventType:     fmt.Sprintf("stk.result.%d", *cb.ResultCode),
	}, nil
}

type stripePayload struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func parseStripe(body []byte) (*WebhookEvent, error) {
	var p stripePayload
	if err := decode(body, &p); err != nil {
		return nil, err
	}

	var outcome Outcome
	switch p.Type {
	case "payment_intent.succeeded":
		outcome = OutcomeSuccess
	case "payment_intent.payment_failed":
		outcome = OutcomeFailed
	default:
		return &WebhookEvent{Provider: ProviderStripe, EventType: p.Type, Ignored: true}, nil
	}

	id, err := transactionID(p.Data.Object.Metadata["transactionId"])
	if err != nil {
		return nil, err
	}
	return &WebhookEvent{
		TransactionID: id,
		Outcome:       outcome,
		Reference:     p.Data.Object.ID,
		Provider:      ProviderStripe,
		EventType:     p.Type,
	}, nil
}

type flutterwavePayload struct {
	Event string `json:"event"`
	Data  struct {
		Status string `json:"status"`
		TxRef  string `json:"tx_ref"`
		FlwRef string `json:"flw_ref"`
	} `json:"data"`
}

func parseFlutterwave(body []byte) (*WebhookEvent, error) {
	var p flutterwavePayload
	if err := decode(body, &p); err != nil {
		return nil, err
	}

	var outcome Outcome
	switch {
	case p.Event == "charge.completed" && strings.EqualFold(p.Data.Status, "successful"):
		outcome = OutcomeSuccess
	case p.Event == "charge.completed" && strings.EqualFold(p.Data.Status, "failed"),
		p.Event == "charge.failed":
		outcome = OutcomeFailed
	default:
		return &WebhookEvent{Provider: ProviderFlutterwave, EventType: p.Event, Ignored: true}, nil
	}

	id, err := transactionID(p.Data.TxRef)
	if err != nil {
		return nil, err
	}
	return &WebhookEvent{
		TransactionID: id,
		Outcome:       outcome,
		Reference:     p.Data.FlwRef,
		Provider:      ProviderFlutterwave,
		EventType:     p.Event,
	}, nil
}

type bankPayload struct {
	TransactionID   string `json:"transactionId"`
	Status          string `json:"status"`
	ReferenceNumber string `json:"referenceNumber"`
}

func parseBank(body []byte) (*WebhookEvent, error) {
	var p bankPayload
	if err := decode(body, &p); err != nil {
		return nil, err
	}

	outcome, ok := normalizeStatus(p.Status)
	if !ok {
		return nil, invalidWebhook("status", fmt.Sprintf("unsupported status %q", p.Status))
	}
	id, err := transactionID(p.TransactionID)
	if err != nil {
		return nil, err
	}
	return &WebhookEvent{
		TransactionID: id,
		Outcome:       outcome,
		Reference:     p.ReferenceNumber,
		Provider:      ProviderBank,
		EventType:     "transfer." + strings.ToLower(p.Status),
	}, nil
}

func normalizeStatus(status string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful", "succeeded", "completed", "paid":
		return OutcomeSuccess, true
	case "failed", "failure", "declined", "cancelled", "canceled":
		return OutcomeFailed, true
	case "pending", "processing":
		return OutcomePending, true
	}
	return "", false
}

func decode(body []byte, v interface{}) error {
	if len(body) == 0 {
		return invalidWebhook("body", "is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return appErrors.ErrInvalidWebhook.WithError(err)
	}
	return nil
}

func transactionID(raw string) (ulid.ULID, error) {
	if strings.TrimSpace(raw) == "" {
		return ulid.ULID{}, invalidWebhook("transactionId", "is required")
	}
	id, err := pkg.ParseULID(strings.TrimSpace(raw))
	if err != nil {
		return ulid.ULID{}, invalidWebhook("transactionId", "is not a valid id")
	}
	return id, nil
}

func invalidWebhook(field, msg string) error {
	return appErrors.ErrInvalidWebhook.WithDetails(map[string]interface{}{
		"field":   field,
		"message": msg,
	})
}
