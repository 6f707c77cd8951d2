package telephony

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseStatusCallback(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("CallStatus", "completed")
	form.Set("CallDuration", "42")
	form.Set("AnsweredBy", "human")

	req := httptest.NewRequest("POST", "/webhooks/telephony/status?callId=call-1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f, err := ParseStatusCallback(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.CallID != "call-1" {
		t.Fatalf("expected callId from query, got %q", f.CallID)
	}
	if f.ProviderCallID != "CA123" || f.CallStatus != "completed" || f.CallDuration != 42 {
		t.Fatalf("unexpected form: %+v", f)
	}
}

func TestParseStatusCallback_MissingDuration(t *testing.T) {
	form := url.Values{}
	form.Set("CallSid", "CA123")
	form.Set("CallStatus", "ringing")

	req := httptest.NewRequest("POST", "/webhooks/telephony/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f, err := ParseStatusCallback(req)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.CallDuration != 0 {
		t.Fatalf("expected zero duration, got %d", f.CallDuration)
	}
}
