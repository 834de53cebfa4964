package channel

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type TwilioSettings struct {
	APIBaseURL string
	AccountSID string
	AuthToken  string
	FromNumber string
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type twilioClient struct {
	client   *http.Client
	settings TwilioSettings
}

// post submits a form to an account-scoped Twilio resource, e.g. "Messages".
func (c twilioClient) post(ctx context.Context, resource string, form url.Values) (twilioResponse, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s.json",
		strings.TrimRight(c.settings.APIBaseURL, "/"), url.PathEscape(c.settings.AccountSID), resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return twilioResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.settings.AccountSID, c.settings.AuthToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return twilioResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var res twilioResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&res); err != nil {
		return twilioResponse{}, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || res.Code != 0 {
		return twilioResponse{}, fmt.Errorf("twilio error %d (status %d): %s", res.Code, resp.StatusCode, res.Message)
	}
	return res, nil
}

type TwilioSMSSender struct{ api twilioClient }

func NewTwilioSMSSender(client *http.Client, s TwilioSettings) *TwilioSMSSender {
	return &TwilioSMSSender{api: twilioClient{client: client, settings: s}}
}

func (s *TwilioSMSSender) Send(ctx context.Context, msg Message) (Result, error) {
	form := url.Values{}
	form.Set("To", msg.Recipient)
	form.Set("From", s.api.settings.FromNumber)
	form.Set("Body", msg.Body)
	res, err := s.api.post(ctx, "Messages", form)
	if err != nil {
		return Result{}, err
	}
	return Result{ExternalID: res.SID, Status: "sent", Detail: res.Status}, nil
}

type TwilioCallSender struct{ api twilioClient }

func NewTwilioCallSender(client *http.Client, s TwilioSettings) *TwilioCallSender {
	return &TwilioCallSender{api: twilioClient{client: client, settings: s}}
}

// Send places a call that reads the message aloud.
func (s *TwilioCallSender) Send(ctx context.Context, msg Message) (Result, error) {
	twiml, err := sayTwiML(msg.Body)
	if err != nil {
		return Result{}, err
	}
	form := url.Values{}
	form.Set("To", msg.Recipient)
	form.Set("From", s.api.settings.FromNumber)
	form.Set("Twiml", twiml)
	res, err := s.api.post(ctx, "Calls", form)
	if err != nil {
		return Result{}, err
	}
	return Result{ExternalID: res.SID, Status: "completed", Detail: res.Status}, nil
}

func sayTwiML(text string) (string, error) {
	var b strings.Builder
	b.WriteString("<Response><Say>")
	if err := xml.EscapeText(&b, []byte(text)); err != nil {
		return "", fmt.Errorf("encode twiml: %w", err)
	}
	b.WriteString("</Say></Response>")
	return b.String(), nil
}
