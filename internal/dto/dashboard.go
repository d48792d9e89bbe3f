package dto

import "github.com/noah-isme/ai-saathi-api/internal/models"

// DashboardStatsResponse is the dashboard card payload with labels in the requested language.
type DashboardStatsResponse struct {
	Language string                `json:"language"`
	Stats    models.DashboardStats `json:"stats"`
	Labels   map[string]string     `json:"labels"`
}

// DashboardActivitiesResponse is the activity feed payload.
type DashboardActivitiesResponse struct {
	Language     string                `json:"language"`
	Activities   []models.ActivityView `json:"activities"`
	EmptyMessage string                `json:"emptyMessage,omitempty"`
}
