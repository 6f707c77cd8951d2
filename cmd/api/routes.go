package main

import (
	"github.com/gin-gonic/gin"

	"outdial-platform/internal/httpapi"
	"outdial-platform/internal/ratelimit"
	"outdial-platform/internal/rbac"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, limiter *ratelimit.Limiter) {
	// public
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// Provider webhooks (public). The provider retries on non-2xx, so these
	// handlers ack first and drop bad payloads.
	// NOTE: protect with provider signature validation in production.
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/voice/status", h.VoiceStatusWebhook)
		webhooks.POST("/voice/transcript", h.VoiceTranscriptWebhook)
	}

	// Token issuance sits outside the auth middleware.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", h.Me)

		// Dashboard reads poll at a fixed interval; the lenient ceiling
		// covers them. Call placement is throttled inside the call engine
		// with the strict ceiling.
		reads := ratelimit.Require(limiter, ratelimit.ClassLenient)

		campaignGroup := v1.Group("/campaigns")
		campaignGroup.Use(rbac.RequireAnyRole(rbac.RoleMember))
		{
			campaignGroup.POST("", h.CreateCampaign)
			campaignGroup.GET("", reads, h.ListCampaigns)
			campaignGroup.GET("/:id", reads, h.GetCampaign)
			campaignGroup.POST("/:id/pause", h.PauseCampaign)
			campaignGroup.POST("/:id/resume", h.ResumeCampaign)
			campaignGroup.POST("/:id/cancel", h.CancelCampaign)
			campaignGroup.GET("/:id/calls", reads, h.CampaignCalls)
			campaignGroup.GET("/:id/summary", reads, h.CampaignSummary)
			campaignGroup.GET("/:id/engagement", reads, h.CampaignEngagement)
		}

		callGroup := v1.Group("/calls")
		callGroup.Use(rbac.RequireAnyRole(rbac.RoleMember))
		{
			callGroup.GET("/:id", reads, h.GetCall)
		}
	}
}
