// Package notify pushes disclosure events to partner callback URLs. Each
// delivery is signed with the service signing key, attempted once, and
// recorded; partners poll the API if a push is missed.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Brijeshthummar02/SecureShare-Eagles/internal/platform/crypto"
)

const (
	SignatureHeader = "X-Signature"
	EventDataShared = "customer_data_shared"

	maxResponseBody = 4 << 10
)

// Delivery records one webhook attempt.
type Delivery struct {
	ID          uuid.UUID `json:"id"`
	PartnerID   uuid.UUID `json:"partnerId"`
	URL         string    `json:"url"`
	EventType   string    `json:"eventType"`
	StatusCode  int       `json:"statusCode"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

// DeliveryStore keeps recent delivery records in memory for operator
// inspection.
type DeliveryStore struct {
	mu      sync.RWMutex
	records []*Delivery
	cap     int
}

func NewDeliveryStore(capacity int) *DeliveryStore {
	if capacity <= 0 {
		capacity = 256
	}
	return &DeliveryStore{cap: capacity}
}

func (s *DeliveryStore) add(d *Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, d)
	if len(s.records) > s.cap {
		s.records = s.records[len(s.records)-s.cap:]
	}
}

// Recent returns up to n most recent deliveries, newest first.
func (s *DeliveryStore) Recent(n int) []*Delivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]*Delivery, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// Notifier delivers signed event payloads to partner callbacks.
type Notifier struct {
	client *http.Client
	signer *crypto.Signer
	store  *DeliveryStore
	logger zerolog.Logger
}

func NewNotifier(timeout time.Duration, signer *crypto.Signer, store *DeliveryStore, logger zerolog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		signer: signer,
		store:  store,
		logger: logger,
	}
}

type eventBody struct {
	EventType string                 `json:"eventType"`
	Timestamp string                 `json:"timestamp"`
	PartnerID string                 `json:"partnerId"`
	Data      map[string]interface{} `json:"data"`
}

// NotifyDataShared pushes a customer_data_shared event to the callback URL.
// The event data carries the encrypted envelope itself when one was built,
// so a partner that misses the synchronous response can still recover the
// disclosure from the push. One attempt only; the outcome is logged and
// recorded, never retried or surfaced to the disclosure caller.
func (n *Notifier) NotifyDataShared(ctx context.Context, callbackURL string, partnerID uuid.UUID, encrypted bool, envelope *crypto.Envelope, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["encrypted"] = encrypted
	if envelope != nil {
		data["encryptionType"] = envelope.EncryptionType
		data["algorithm"] = envelope.Algorithm
		data["encryptedData"] = envelope.Ciphertext
		data["iv"] = envelope.IV
		data["authTag"] = envelope.AuthTag
		data["encryptedKey"] = envelope.EncryptedKey
	}

	body := eventBody{
		EventType: EventDataShared,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		PartnerID: partnerID.String(),
		Data:      data,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		n.logger.Error().Err(err).Msg("webhook payload serialization failed")
		return
	}

	d := &Delivery{
		ID:          uuid.New(),
		PartnerID:   partnerID,
		URL:         callbackURL,
		EventType:   EventDataShared,
		DeliveredAt: time.Now().UTC(),
	}
	defer func() {
		if n.store != nil {
			n.store.add(d)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		d.Error = err.Error()
		n.logger.Warn().Err(err).Str("url", callbackURL).Msg("webhook request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	if n.signer != nil {
		sig, err := n.signer.Sign(payload)
		if err != nil {
			d.Error = err.Error()
			n.logger.Warn().Err(err).Msg("webhook payload signing failed")
			return
		}
		req.Header.Set(SignatureHeader, sig)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		d.Error = err.Error()
		n.logger.Warn().Err(err).
			Str("partner_id", partnerID.String()).
			Str("url", callbackURL).
			Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, maxResponseBody)

	d.StatusCode = resp.StatusCode
	d.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !d.Success {
		n.logger.Warn().
			Int("status", resp.StatusCode).
			Str("partner_id", partnerID.String()).
			Str("url", callbackURL).
			Msg("webhook delivery rejected by partner")
	}
}
