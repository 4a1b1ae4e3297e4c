package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// TwilioSender texts the fixed recipient number from the fixed sender
// number through the Twilio REST API.
type TwilioSender struct {
	api  messageCreator
	from string
	to   string
}

func NewTwilioSender(accountSID, authToken, from, to string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.Api, from: from, to: to}
}

func (s *TwilioSender) Send(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(job.Body())

	if _, err := s.api.CreateMessage(params); err != nil {
		// 4xx from Twilio (bad number, auth) will not get better on retry
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Status >= 400 && restErr.Status < 500 && restErr.Status != 429 {
			return Permanent(fmt.Errorf("twilio: %w", err))
		}
		return fmt.Errorf("twilio: %w", err)
	}
	return nil
}

// LogSender only logs the SMS. Used when no provider is configured.
type LogSender struct {
	logger logging.Logger
	to     string
}

func NewLogSender(logger logging.Logger, to string) *LogSender {
	return &LogSender{logger: logger.With("module", "sms"), to: to}
}

func (s *LogSender) Send(ctx context.Context, job Job) error {
	s.logger.Info(ctx, "sms (not sent, no provider configured)", "to", s.to, "body", job.Body(), "job_id", job.ID)
	return nil
}
