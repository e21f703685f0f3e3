package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
	"github.com/Chris-Buzz/Daily-Planner/internal/store"
)

// PushChannel delivers notifications to a user's registered browsers via
// web push (VAPID).
type PushChannel struct {
	repo       store.Repo
	publicKey  string
	privateKey string
	subject    string
}

// NewPushChannel creates a web-push channel using the given VAPID key pair.
func NewPushChannel(repo store.Repo, publicKey, privateKey, subject string) *PushChannel {
	return &PushChannel{
		repo:       repo,
		publicKey:  publicKey,
		privateKey: privateKey,
		subject:    subject,
	}
}

func (c *PushChannel) Name() string { return domain.ChannelPush }

// Send pushes to every subscription the user has. Subscriptions the push
// service reports as gone (404/410) are removed. Delivery counts as
// successful when at least one subscription accepted the payload.
func (c *PushChannel) Send(ctx context.Context, p *domain.Profile, msg Message) error {
	subs, err := c.repo.ListSubscriptions(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return errors.New("no push subscriptions registered")
	}

	payload, err := json.Marshal(map[string]string{
		"title": msg.Title,
		"body":  msg.Body,
	})
	if err != nil {
		return err
	}

	delivered := 0
	var lastErr error
	for _, sub := range subs {
		resp, err := webpush.SendNotification(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, &webpush.Options{
			Subscriber:      c.subject,
			VAPIDPublicKey:  c.publicKey,
			VAPIDPrivateKey: c.privateKey,
			TTL:             300,
		})
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			// Subscription revoked by the push service.
			_ = c.repo.DeleteSubscription(ctx, p.UserID, sub.Endpoint)
			lastErr = fmt.Errorf("subscription gone: %s", resp.Status)
		} else if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("push service: %s", resp.Status)
		} else {
			delivered++
		}
		_ = resp.Body.Close()
	}
	if delivered == 0 {
		return lastErr
	}
	return nil
}
