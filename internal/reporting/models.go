package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics. UserID is required;
// CampaignID narrows the summary to one campaign.
type CallsSummaryRequest struct {
	UserID     string    `json:"user_id"`
	Range      TimeRange `json:"range"`
	CampaignID string    `json:"campaign_id,omitempty"`
}

type CallsSummary struct {
	UserID     string `json:"user_id"`
	CampaignID string `json:"campaign_id,omitempty"`

	TotalCalls     int `json:"total_calls"`
	CompletedCalls int `json:"completed_calls"`
	FailedCalls    int `json:"failed_calls"`
	NoAnswerCalls  int `json:"no_answer_calls"`
	BusyCalls      int `json:"busy_calls"`
	VoicemailCalls int `json:"voicemail_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`
}

// EngagementMetricsRequest requests conversation-quality metrics for one
// campaign, derived from post-call analysis.
type EngagementMetricsRequest struct {
	UserID     string    `json:"user_id"`
	Range      TimeRange `json:"range"`
	CampaignID string    `json:"campaign_id"`
}

type EngagementMetrics struct {
	UserID     string `json:"user_id"`
	CampaignID string `json:"campaign_id"`

	CallsAttempted int `json:"calls_attempted"`
	CallsConnected int `json:"calls_connected"`

	HighInterest   int `json:"high_interest"`
	MediumInterest int `json:"medium_interest"`
	LowInterest    int `json:"low_interest"`

	ConnectionRate        float64 `json:"connection_rate"`
	AverageSentimentScore float64 `json:"average_sentiment_score"`
}
