package dto

import (
	"time"

	"fashion-recommender-be/pkg/recommend/response"
)

type SendTurnRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type TurnResponse struct {
	SessionId string                     `json:"session_id"`
	Messages  []response.OutboundMessage `json:"messages"`
}

type ChatStatsResponse struct {
	ActiveSessions int `json:"active_sessions"`
}

type IndexStatusResponse struct {
	Ready     bool      `json:"ready"`
	Items     int       `json:"items"`
	Links     int       `json:"links"`
	Dimension int       `json:"dimension"`
	BuiltAt   time.Time `json:"built_at"`
	LastError string    `json:"last_error,omitempty"`
}
