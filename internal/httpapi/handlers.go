package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"outdial-platform/internal/auth"
	"outdial-platform/internal/calls"
	"outdial-platform/internal/campaigns"
	"outdial-platform/internal/health"
	"outdial-platform/internal/reporting"
	"outdial-platform/internal/telephony"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Manager
	Engine    *calls.Engine
	CallRepo  calls.Repository
	Campaigns *campaigns.Service
	Reporting *reporting.Service
	Health    *health.Reporter
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
}

// --- Campaigns ---

type createCampaignRequest struct {
	Name         string   `json:"name"`
	ScriptID     string   `json:"script_id"`
	LeadIDs      []string `json:"lead_ids"`
	DelaySeconds int      `json:"delay_seconds"`
}

func (h Handlers) CreateCampaign(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	campaign, err := h.Campaigns.Create(c.Request.Context(), campaigns.CreateRequest{
		UserID:       userID,
		Name:         req.Name,
		ScriptID:     req.ScriptID,
		LeadIDs:      req.LeadIDs,
		DelaySeconds: req.DelaySeconds,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h Handlers) ListCampaigns(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	out, err := h.Campaigns.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "campaign lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": out})
}

// GetCampaign returns the latest persisted checkpoint; clients poll this, so
// the response never reflects a partially applied update.
func (h Handlers) GetCampaign(c *gin.Context) {
	campaign, err := h.Campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.campaignError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h Handlers) PauseCampaign(c *gin.Context)  { h.controlCampaign(c, h.Campaigns.Pause) }
func (h Handlers) ResumeCampaign(c *gin.Context) { h.controlCampaign(c, h.Campaigns.Resume) }
func (h Handlers) CancelCampaign(c *gin.Context) { h.controlCampaign(c, h.Campaigns.Cancel) }

func (h Handlers) controlCampaign(c *gin.Context, op func(ctx context.Context, userID, id string) error) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	if err := op(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.campaignError(c, err)
		return
	}
	campaign, err := h.Campaigns.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.campaignError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

func (h Handlers) campaignError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, campaigns.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
	case errors.Is(err, campaigns.ErrInvalidTransition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "campaign operation failed"})
	}
}

// --- Reporting ---

func (h Handlers) CampaignSummary(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Reporting.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		UserID:     userID,
		CampaignID: c.Param("id"),
		Range:      rng,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CampaignEngagement(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Reporting.EngagementMetrics(c.Request.Context(), reporting.EngagementMetricsRequest{
		UserID:     userID,
		CampaignID: c.Param("id"),
		Range:      rng,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "engagement metrics failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// parseRange reads an optional from/to window (RFC 3339); default is the
// trailing 30 days.
func parseRange(c *gin.Context) (reporting.TimeRange, error) {
	now := time.Now().UTC()
	rng := reporting.TimeRange{From: now.AddDate(0, 0, -30), To: now}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return reporting.TimeRange{}, errors.New("invalid from timestamp")
		}
		rng.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return reporting.TimeRange{}, errors.New("invalid to timestamp")
		}
		rng.To = t
	}
	return rng, nil
}

// CampaignCalls lists the durable call records behind a campaign's
// aggregates, for dashboard drill-down.
func (h Handlers) CampaignCalls(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Reporting.CampaignCalls(c.Request.Context(), reporting.CallsSummaryRequest{
		UserID:     userID,
		CampaignID: c.Param("id"),
		Range:      rng,
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": out})
}

// --- Calls ---

// GetCall serves per-call detail: the live registry while the call is in
// flight, then the durable record.
func (h Handlers) GetCall(c *gin.Context) {
	callID := c.Param("id")
	if snap, ok := h.Engine.Snapshot(callID); ok {
		c.JSON(http.StatusOK, gin.H{"call": snap, "live": true})
		return
	}
	record, err := h.CallRepo.Get(c.Request.Context(), callID)
	if err != nil {
		if errors.Is(err, calls.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"call": record, "live": false})
}

// --- Webhooks ---

// VoiceStatusWebhook ingests provider lifecycle callbacks. The provider is
// always acked; bad or duplicate events are logged and dropped, never
// surfaced, so the provider does not retry-storm.
func (h Handlers) VoiceStatusWebhook(c *gin.Context) {
	form, err := telephony.ParseStatusCallback(c.Request)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}
	if ev, ok := calls.EventFromProviderStatus(form.CallStatus, form.CallDuration); ok {
		h.Engine.OnProviderEvent(c.Request.Context(), form.CallID, ev)
	}
	c.Status(http.StatusNoContent)
}

type transcriptWebhookRequest struct {
	CallID  string `json:"call_id"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// VoiceTranscriptWebhook ingests one utterance from the speech pipeline.
func (h Handlers) VoiceTranscriptWebhook(c *gin.Context) {
	var req transcriptWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CallID == "" || req.Text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id and text required"})
		return
	}
	speaker := req.Speaker
	if speaker == "" {
		speaker = calls.SpeakerLead
	}
	err := h.Engine.AppendTranscript(c.Request.Context(), req.CallID, speaker, req.Text)
	switch {
	case errors.Is(err, calls.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
	case errors.Is(err, calls.ErrNotInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "call is not in progress"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "transcript append failed"})
	default:
		c.Status(http.StatusNoContent)
	}
}

// --- Health ---

// Healthz is liveness only: the process is up and serving.
func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz probes dependencies; load balancers route away on 503.
func (h Handlers) Readyz(c *gin.Context) {
	report := h.Health.Check(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
