package notify

import (
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// WhatsApp pings the shop admin about new custom orders. A nil receiver or
// missing credentials make every call a no-op.
type WhatsApp struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewWhatsApp(accountSID, authToken, from, to string) *WhatsApp {
	if accountSID == "" || authToken == "" {
		return nil
	}
	return &WhatsApp{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
		to:   to,
	}
}

func (w *WhatsApp) NotifyCustomOrder(name, phone, email string) error {
	if w == nil || w.client == nil {
		return nil
	}

	params := &api.CreateMessageParams{}
	params.SetFrom("whatsapp:" + w.from)
	params.SetTo("whatsapp:" + w.to)
	params.SetBody(fmt.Sprintf("New order found for custom order from %s, phone: %s, email: %s", name, phone, email))

	_, err := w.client.Api.CreateMessage(params)
	return err
}
