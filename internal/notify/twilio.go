package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/smartspend/smartspend/internal/domain"
)

// TwilioSink delivers notifications to the user's mobile number, either as
// plain SMS or over WhatsApp.
type TwilioSink struct {
	client   *twilio.RestClient
	from     string
	whatsapp bool
}

// NewSMSSink builds a sink that sends SMS from the given number.
func NewSMSSink(accountSID, authToken, from string) *TwilioSink {
	return newTwilioSink(accountSID, authToken, from, false)
}

// NewWhatsAppSink builds a sink that sends WhatsApp messages from the given
// number.
func NewWhatsAppSink(accountSID, authToken, from string) *TwilioSink {
	return newTwilioSink(accountSID, authToken, from, true)
}

func newTwilioSink(accountSID, authToken, from string, whatsapp bool) *TwilioSink {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSink{client: client, from: from, whatsapp: whatsapp}
}

func (t *TwilioSink) Name() string {
	if t.whatsapp {
		return "whatsapp"
	}
	return "sms"
}

// Send delivers the message body to the user's mobile number. Users without
// a number are reported as a failure and handled by the dispatcher.
func (t *TwilioSink) Send(_ context.Context, user *domain.User, msg Message) error {
	if user.MobileNumber == "" {
		return fmt.Errorf("user %s has no mobile number", user.ID)
	}

	to, from := user.MobileNumber, t.from
	if t.whatsapp {
		to = "whatsapp:" + to
		from = "whatsapp:" + from
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(msg.Subject + "\n" + msg.Text)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("sending %s: %w", t.Name(), err)
	}
	return nil
}
