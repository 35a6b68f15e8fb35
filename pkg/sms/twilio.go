// Package sms sends administrator notifications through Twilio.
package sms

import (
	"context"
	"errors"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrNotConfigured is returned when Twilio credentials are missing.
var ErrNotConfigured = errors.New("Twilio not configured")

// Sender sends a single text message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, to, from, body string) (string, error)
}

// Config holds the Twilio credentials and the fixed sender/recipient numbers.
type Config struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	AdminNumber string
}

// Configured reports whether every value needed to send is present.
func (c Config) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != "" && c.AdminNumber != ""
}

// messageCreator is the subset of the Twilio v2010 API used here.
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender sends SMS through the Twilio REST API. Safe for concurrent use.
type TwilioSender struct {
	api messageCreator
}

// NewTwilioSender creates a TwilioSender authenticated with the given account.
func NewTwilioSender(accountSID, authToken string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api}
}

var _ Sender = (*TwilioSender)(nil)

// Send creates one outbound message. The Twilio SDK has no context support,
// so ctx is only checked before the call.
func (s *TwilioSender) Send(ctx context.Context, to, from, body string) (string, error) {
	if s == nil || s.api == nil {
		return "", ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
