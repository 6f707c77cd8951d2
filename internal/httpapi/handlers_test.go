package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"outdial-platform/internal/auth"
	"outdial-platform/internal/calls"
	"outdial-platform/internal/campaigns"
	"outdial-platform/internal/health"
	"outdial-platform/internal/reporting"
	"outdial-platform/internal/statestore"
	"outdial-platform/internal/telephony"
	"outdial-platform/internal/voice"
)

type okDialer struct {
	mu  sync.Mutex
	ids []string
}

func (d *okDialer) Name() string                          { return "ok" }
func (d *okDialer) HealthCheck(ctx context.Context) error { return nil }
func (d *okDialer) PlaceCall(ctx context.Context, req telephony.PlaceCallRequest) (telephony.PlaceCallResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, req.CallID)
	return telephony.PlaceCallResult{ProviderCallID: fmt.Sprintf("PC%d", len(d.ids))}, nil
}

func (d *okDialer) placed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

type fixture struct {
	router   *gin.Engine
	engine   *calls.Engine
	dialer   *okDialer
	callRepo *calls.MemoryRepo
	camps    *campaigns.Service
	campRepo *campaigns.MemoryRepo
}

func identityMiddleware(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), userID, role))
		c.Next()
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := statestore.NewLocal()

	callRepo := calls.NewMemoryRepo()
	dialer := &okDialer{}
	engine := calls.NewEngine(calls.EngineConfig{FromNumber: "+15550000000"}, calls.EngineDeps{
		Registry:    calls.NewRegistry(),
		Dialer:      dialer,
		Voices:      voice.NewPicker(),
		Assignments: voice.NewAssignments(store, time.Hour),
		Repo:        callRepo,
		Log:         log,
	})

	campRepo := campaigns.NewMemoryRepo()
	leadSource := campaigns.NewMemoryLeadSource(
		calls.Lead{ID: "A", FirstName: "Ana", Phone: "+14155550001"},
	)
	scriptSource := campaigns.NewMemoryScriptSource(campaigns.Script{ID: "s1", Content: "Hi {{firstName}}"})
	camps := campaigns.NewService(campRepo, engine, leadSource, scriptSource, nil, log)
	t.Cleanup(camps.Close)

	reporter := health.NewReporter(time.Second)
	reporter.Register("dialer", func(ctx context.Context) error { return nil })

	h := Handlers{
		Engine:    engine,
		CallRepo:  callRepo,
		Campaigns: camps,
		Reporting: reporting.NewService(&callRepoReporting{repo: callRepo}),
		Health:    reporter,
	}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.POST("/webhooks/voice/status", h.VoiceStatusWebhook)
	r.POST("/webhooks/voice/transcript", h.VoiceTranscriptWebhook)

	v1 := r.Group("/v1")
	v1.Use(identityMiddleware("u1", "member"))
	v1.GET("/calls/:id", h.GetCall)
	v1.POST("/campaigns", h.CreateCampaign)
	v1.GET("/campaigns/:id", h.GetCampaign)
	v1.GET("/campaigns/:id/calls", h.CampaignCalls)
	v1.POST("/campaigns/:id/pause", h.PauseCampaign)
	v1.POST("/campaigns/:id/resume", h.ResumeCampaign)
	v1.POST("/campaigns/:id/cancel", h.CancelCampaign)

	return &fixture{router: r, engine: engine, dialer: dialer, callRepo: callRepo, camps: camps, campRepo: campRepo}
}

// callRepoReporting adapts the in-memory call repo to the reporting read
// contract for tests.
type callRepoReporting struct {
	repo *calls.MemoryRepo
}

func (a *callRepoReporting) ListCalls(ctx context.Context, userID string, from, to time.Time, campaignID string) ([]calls.Call, error) {
	all, err := a.repo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	out := make([]calls.Call, 0, len(all))
	for _, c := range all {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fixture) do(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestWebhookDrivesCallLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	callID, err := f.engine.Start(ctx, calls.StartRequest{
		UserID: "u1",
		Lead:   calls.Lead{ID: "A", FirstName: "Ana", Phone: "+14155550001"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	post := func(status, duration string) *httptest.ResponseRecorder {
		form := url.Values{"CallSid": {"PC1"}, "CallStatus": {status}}
		if duration != "" {
			form.Set("CallDuration", duration)
		}
		return f.do(t, http.MethodPost, "/webhooks/voice/status?callId="+callID,
			"application/x-www-form-urlencoded", form.Encode())
	}

	if w := post("ringing", ""); w.Code != http.StatusNoContent {
		t.Fatalf("ringing webhook: %d", w.Code)
	}
	if w := post("in-progress", ""); w.Code != http.StatusNoContent {
		t.Fatalf("answer webhook: %d", w.Code)
	}

	w := f.do(t, http.MethodPost, "/webhooks/voice/transcript", "application/json",
		`{"call_id":"`+callID+`","speaker":"lead","text":"hello"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("transcript webhook: %d body=%s", w.Code, w.Body.String())
	}

	if w := post("completed", "42"); w.Code != http.StatusNoContent {
		t.Fatalf("completed webhook: %d", w.Code)
	}

	record, err := f.callRepo.Get(ctx, callID)
	if err != nil {
		t.Fatalf("durable record: %v", err)
	}
	if record.Status != calls.CallStatusCompleted || record.DurationSeconds != 42 || len(record.Transcript) != 1 {
		t.Fatalf("record = %+v", record)
	}

	// Duplicate terminal webhook is acked and ignored.
	if w := post("completed", "42"); w.Code != http.StatusNoContent {
		t.Fatalf("duplicate webhook: %d", w.Code)
	}
}

func TestTranscriptWebhookOutsideInProgress(t *testing.T) {
	f := newFixture(t)
	callID, err := f.engine.Start(context.Background(), calls.StartRequest{
		UserID: "u1",
		Lead:   calls.Lead{ID: "A", Phone: "+14155550001"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	w := f.do(t, http.MethodPost, "/webhooks/voice/transcript", "application/json",
		`{"call_id":"`+callID+`","text":"too early"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("append before answer: %d", w.Code)
	}

	w = f.do(t, http.MethodPost, "/webhooks/voice/transcript", "application/json",
		`{"call_id":"nope","text":"x"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("append to unknown call: %d", w.Code)
	}
}

func TestGetCallLiveThenDurable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	callID, err := f.engine.Start(ctx, calls.StartRequest{
		UserID: "u1",
		Lead:   calls.Lead{ID: "A", Phone: "+14155550001"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	w := f.do(t, http.MethodGet, "/v1/calls/"+callID, "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"live":true`) {
		t.Fatalf("live detail: %d %s", w.Code, w.Body.String())
	}

	f.engine.OnProviderEvent(ctx, callID, calls.ProviderEvent{Type: calls.EventHangup, DisconnectReason: calls.DisconnectCompleted})
	f.engine.Evict(callID)

	w = f.do(t, http.MethodGet, "/v1/calls/"+callID, "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"live":false`) {
		t.Fatalf("durable detail: %d %s", w.Code, w.Body.String())
	}

	if w := f.do(t, http.MethodGet, "/v1/calls/unknown", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown call: %d", w.Code)
	}
}

func TestCampaignControlOverHTTP(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/campaigns", "application/json",
		`{"name":"q3","script_id":"s1","lead_ids":["A"],"delay_seconds":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}

	all, _ := f.campRepo.ListByUser(context.Background(), "u1")
	if len(all) != 1 {
		t.Fatalf("campaigns persisted = %d", len(all))
	}
	id := all[0].ID

	// Play the provider: hang up the campaign's call once it is placed,
	// then wait for the one-lead campaign to finish. Control ops on a
	// completed campaign must 409.
	deadline := time.Now().Add(2 * time.Second)
	hungUp := false
	for {
		if ids := f.dialer.placed(); len(ids) == 1 && !hungUp {
			f.engine.OnProviderEvent(context.Background(), ids[0], calls.ProviderEvent{
				Type:             calls.EventHangup,
				DisconnectReason: calls.DisconnectCompleted,
				DurationSeconds:  5,
			})
			hungUp = true
		}
		got, _ := f.campRepo.Get(context.Background(), id)
		if got.Status == campaigns.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("campaign never completed")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if w := f.do(t, http.MethodPost, "/v1/campaigns/"+id+"/pause", "", ""); w.Code != http.StatusConflict {
		t.Fatalf("pause completed campaign: %d", w.Code)
	}
	if w := f.do(t, http.MethodPost, "/v1/campaigns/nope/pause", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("pause unknown campaign: %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/v1/campaigns/"+id, "", ""); w.Code != http.StatusOK {
		t.Fatalf("get campaign: %d", w.Code)
	}
}

func TestCampaignCallsListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	callID, err := f.engine.Start(ctx, calls.StartRequest{
		UserID:     "u1",
		CampaignID: "c9",
		Lead:       calls.Lead{ID: "A", Phone: "+14155550001"},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.engine.OnProviderEvent(ctx, callID, calls.ProviderEvent{
		Type:             calls.EventHangup,
		DisconnectReason: calls.DisconnectCompleted,
		DurationSeconds:  7,
	})

	w := f.do(t, http.MethodGet, "/v1/campaigns/c9/calls", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), callID) {
		t.Fatalf("campaign calls: %d %s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)
	if w := f.do(t, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d %s", w.Code, w.Body.String())
	}
	if w := f.do(t, http.MethodGet, "/readyz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz: %d %s", w.Code, w.Body.String())
	}
}
