// Package webpush delivers VAPID web-push notifications to a user's
// registered subscriptions.
package webpush

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	wp "github.com/SherClockHolmes/webpush-go"
)

type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
	Badge string `json:"badge"`
}

// SubscriptionSource is implemented by the push-token registry.
type SubscriptionSource interface {
	ActiveTokens(ctx context.Context, userID int64) ([]string, error)
	Deactivate(ctx context.Context, token string) error
}

type Sender struct {
	subscriber string
	publicKey  string
	privateKey string
	tokens     SubscriptionSource
}

func NewSender(subscriber, publicKey, privateKey string, tokens SubscriptionSource) *Sender {
	if publicKey == "" || privateKey == "" {
		log.Println("[WARN] VAPID keys not configured, web push disabled")
	}
	return &Sender{
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
		tokens:     tokens,
	}
}

func (s *Sender) Enabled() bool { return s.publicKey != "" && s.privateKey != "" }

// Send pushes the payload to every active subscription of the user.
// Delivery failures never propagate: subscriptions the push service reports
// gone are deactivated, everything else is just logged.
func (s *Sender) Send(ctx context.Context, userID int64, p Payload) {
	if !s.Enabled() {
		return
	}
	if p.URL == "" {
		p.URL = "/"
	}
	if p.Icon == "" {
		p.Icon = "/logo.png"
	}
	if p.Badge == "" {
		p.Badge = "/badge.png"
	}

	tokens, err := s.tokens.ActiveTokens(ctx, userID)
	if err != nil {
		log.Printf("[WARN] webpush: list tokens for user %d: %v", userID, err)
		return
	}

	body, err := json.Marshal(p)
	if err != nil {
		return
	}

	for _, tok := range tokens {
		var sub wp.Subscription
		if err := json.Unmarshal([]byte(tok), &sub); err != nil {
			log.Printf("[WARN] webpush: malformed subscription for user %d", userID)
			continue
		}

		resp, err := wp.SendNotification(body, &sub, &wp.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.publicKey,
			VAPIDPrivateKey: s.privateKey,
			TTL:             60,
		})
		if err != nil {
			log.Printf("[WARN] webpush: send to user %d: %v", userID, err)
			continue
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			// subscription expired on the push service side
			if err := s.tokens.Deactivate(ctx, tok); err != nil {
				log.Printf("[WARN] webpush: deactivate token: %v", err)
			}
		}
		resp.Body.Close()
	}
}
