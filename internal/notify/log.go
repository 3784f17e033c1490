package notify

import (
	"context"
	"log"

	"github.com/peseat/api/internal/service"
)

// LogNotifier writes events and text messages to the process log. It is used
// when no broker is configured, e.g. in local development.
type LogNotifier struct{}

func (LogNotifier) Publish(ctx context.Context, ev service.OrderEvent) error {
	log.Printf("event %s: order=%s number=%s status=%s", ev.Type, ev.OrderID, ev.OrderNumber, ev.FulfillmentStatus)
	return nil
}

func (LogNotifier) SendSMS(ctx context.Context, phone, body string) error {
	log.Printf("sms to %s: %s", phone, body)
	return nil
}
