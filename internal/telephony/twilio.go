package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"outdial-platform/internal/config"
)

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioDialer places calls through the Twilio REST API.
// It deliberately avoids the vendor SDK; the surface we need is one form POST.
type TwilioDialer struct {
	accountSID string
	authToken  string
	httpc      *http.Client
	apiBase    string
}

func NewTwilioDialer(cfg config.TwilioConfig) *TwilioDialer {
	return &TwilioDialer{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		httpc:      &http.Client{Timeout: 10 * time.Second},
		apiBase:    twilioAPIBase,
	}
}

func (d *TwilioDialer) Name() string { return "twilio" }

func (d *TwilioDialer) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/Accounts/%s.json", d.apiBase, d.accountSID), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(d.accountSID, d.authToken)

	resp, err := d.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telephony: twilio health returned %d", resp.StatusCode)
	}
	return nil
}

func (d *TwilioDialer) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	if req.To == "" || req.From == "" {
		return PlaceCallResult{}, fmt.Errorf("%w: to and from are required", ErrRejected)
	}

	cb := req.StatusCallbackURL
	if strings.Contains(cb, "?") {
		cb += "&callId=" + url.QueryEscape(req.CallID)
	} else {
		cb += "?callId=" + url.QueryEscape(req.CallID)
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Url", cb)
	form.Set("StatusCallback", cb)
	form.Set("StatusCallbackEvent", "initiated ringing answered completed")
	form.Set("Record", "true")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/Accounts/%s/Calls.json", d.apiBase, d.accountSID),
		strings.NewReader(form.Encode()))
	if err != nil {
		return PlaceCallResult{}, err
	}
	httpReq.SetBasicAuth(d.accountSID, d.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpc.Do(httpReq)
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return PlaceCallResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return PlaceCallResult{}, fmt.Errorf("%w: twilio returned %d", ErrTransport, resp.StatusCode)
	case resp.StatusCode >= 400:
		return PlaceCallResult{}, fmt.Errorf("%w: twilio returned %d: %s", ErrRejected, resp.StatusCode, truncate(body, 200))
	}

	var out struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Sid == "" {
		return PlaceCallResult{}, fmt.Errorf("%w: malformed create-call response", ErrTransport)
	}
	return PlaceCallResult{ProviderCallID: out.Sid}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
