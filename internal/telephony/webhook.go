package telephony

import (
	"net/http"
	"strconv"
	"strings"
)

// StatusCallbackForm captures the subset of provider status-callback fields
// we care about. Twilio sends application/x-www-form-urlencoded by default
// and echoes our callId query parameter back on each callback.
//
// Keep it minimal and provider-adapter-only. Business logic (state machine
// transitions) is not made here.
type StatusCallbackForm struct {
	CallID         string
	ProviderCallID string
	CallStatus     string
	CallDuration   int
	AnsweredBy     string
}

func ParseStatusCallback(r *http.Request) (StatusCallbackForm, error) {
	if err := r.ParseForm(); err != nil {
		return StatusCallbackForm{}, err
	}

	callID := r.URL.Query().Get("callId")
	if callID == "" {
		callID = r.PostFormValue("callId")
	}

	duration := 0
	if v := strings.TrimSpace(r.PostFormValue("CallDuration")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			duration = n
		}
	}

	return StatusCallbackForm{
		CallID:         callID,
		ProviderCallID: r.PostFormValue("CallSid"),
		CallStatus:     strings.TrimSpace(r.PostFormValue("CallStatus")),
		CallDuration:   duration,
		AnsweredBy:     r.PostFormValue("AnsweredBy"),
	}, nil
}
