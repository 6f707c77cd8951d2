package calls

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from CallStatus
		to   CallStatus
		want bool
	}{
		{CallStatusInitiated, CallStatusRinging, true},
		{CallStatusInitiated, CallStatusInProgress, true},
		{CallStatusRinging, CallStatusInProgress, true},
		{CallStatusRinging, CallStatusRinging, false},
		{CallStatusInProgress, CallStatusRinging, false},
		{CallStatusInProgress, CallStatusCompleted, true},
		{CallStatusInitiated, CallStatusBusy, true},
		{CallStatusRinging, CallStatusNoAnswer, true},
		{CallStatusCompleted, CallStatusFailed, false},
		{CallStatusFailed, CallStatusInProgress, false},
		{CallStatusVoicemail, CallStatusCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatus(t *testing.T) {
	cases := []struct {
		reason DisconnectReason
		want   CallStatus
	}{
		{DisconnectCompleted, CallStatusCompleted},
		{DisconnectBusy, CallStatusBusy},
		{DisconnectNoAnswer, CallStatusNoAnswer},
		{DisconnectNoMedia, CallStatusNoAnswer},
		{DisconnectVoicemail, CallStatusVoicemail},
		{DisconnectVoicemailTone, CallStatusVoicemail},
		{DisconnectCanceled, CallStatusFailed},
		{DisconnectError, CallStatusFailed},
		{DisconnectTimeout, CallStatusFailed},
		{DisconnectReason("something-new"), CallStatusFailed},
	}
	for _, tc := range cases {
		got := tc.reason.TerminalStatus()
		if got != tc.want {
			t.Errorf("reason %q: got %s, want %s", tc.reason, got, tc.want)
		}
		if !got.Terminal() {
			t.Errorf("reason %q mapped to non-terminal status %s", tc.reason, got)
		}
	}
}

func TestEventFromProviderStatus(t *testing.T) {
	if ev, ok := EventFromProviderStatus("completed", 42); !ok || ev.Type != EventHangup || ev.DurationSeconds != 42 {
		t.Fatalf("completed: got %+v ok=%v", ev, ok)
	}
	if ev, ok := EventFromProviderStatus("in-progress", 0); !ok || ev.Type != EventAnswered {
		t.Fatalf("in-progress: got %+v ok=%v", ev, ok)
	}
	if _, ok := EventFromProviderStatus("queued", 0); ok {
		t.Fatalf("queued should carry no lifecycle meaning")
	}
	if _, ok := EventFromProviderStatus("initiated", 0); ok {
		t.Fatalf("initiated should carry no lifecycle meaning")
	}
}

func TestLeadFullName(t *testing.T) {
	if got := (Lead{FirstName: "Ada", LastName: "Lovelace"}).FullName(); got != "Ada Lovelace" {
		t.Fatalf("got %q", got)
	}
	if got := (Lead{FirstName: "Ada"}).FullName(); got != "Ada" {
		t.Fatalf("got %q", got)
	}
	if got := (Lead{LastName: "Lovelace"}).FullName(); got != "Lovelace" {
		t.Fatalf("got %q", got)
	}
}
