package dispatch

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"icbcwatch/internal/monitor"
)

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// SMS delivers notifications through the Twilio messaging API.
type SMS struct {
	client     *twilio.RestClient
	cfg        SMSConfig
	bookingURL string
}

func NewSMS(cfg SMSConfig, bookingURL string) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMS{client: client, cfg: cfg, bookingURL: bookingURL}
}

func (s *SMS) Name() string { return "sms" }

func (s *SMS) Send(_ context.Context, ev monitor.Event) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(s.cfg.From)
	params.SetTo(s.cfg.To)
	params.SetBody(textBody(ev, s.bookingURL))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}
