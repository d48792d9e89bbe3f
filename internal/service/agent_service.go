package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

const maxAgentResponseBytes = 4 << 20

// agentRunner executes a single agent call. Implemented by AgentService.
type agentRunner interface {
	Run(ctx context.Context, agent models.AgentName, input map[string]interface{}) (map[string]interface{}, error)
}

// AgentServiceConfig points the runner at the agent service.
type AgentServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AgentService calls the AI agent service over HTTP. Without a base URL it
// answers with deterministic demo content.
type AgentService struct {
	baseURL string
	client  *http.Client
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAgentService constructs an AgentService.
func NewAgentService(cfg AgentServiceConfig, metrics *MetricsService, logger *zap.Logger) *AgentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &AgentService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: metrics,
		logger:  logger,
	}
}

// Demo reports whether the runner serves demo content.
func (s *AgentService) Demo() bool {
	return s.baseURL == ""
}

// Agents lists the agent catalog.
func (s *AgentService) Agents() []models.AgentInfo {
	out := make([]models.AgentInfo, len(models.Agents))
	copy(out, models.Agents)
	return out
}

// Run executes agent with input and returns the agent's JSON result.
func (s *AgentService) Run(ctx context.Context, agent models.AgentName, input map[string]interface{}) (map[string]interface{}, error) {
	info, ok := models.LookupAgent(agent)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown agent: %s", agent))
	}
	if input == nil {
		input = map[string]interface{}{}
	}

	start := time.Now()
	var (
		result map[string]interface{}
		err    error
	)
	if s.Demo() {
		result = demoAgentResult(agent, input)
	} else {
		result, err = s.call(ctx, info, input)
	}
	s.metrics.ObserveAgentTask(string(agent), err == nil, time.Since(start))
	if err != nil {
		s.logger.Warn("agent call failed", zap.String("agent", string(agent)), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *AgentService) call(ctx context.Context, info models.AgentInfo, input map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "agent input is not serialisable")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+info.Path, bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build agent request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAgentUnavailable.Code, appErrors.ErrAgentUnavailable.Status, fmt.Sprintf("%s is unavailable", info.DisplayName))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxAgentResponseBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAgentUnavailable.Code, appErrors.ErrAgentUnavailable.Status, "failed to read agent response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, appErrors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))),
			appErrors.ErrAgentUnavailable.Code, appErrors.ErrAgentUnavailable.Status,
			fmt.Sprintf("%s returned an error", info.DisplayName),
		)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAgentUnavailable.Code, appErrors.ErrAgentUnavailable.Status, "agent returned malformed JSON")
	}
	return result, nil
}

func demoAgentResult(agent models.AgentName, input map[string]interface{}) map[string]interface{} {
	str := func(key, fallback string) string {
		if v, ok := input[key]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
		return fallback
	}

	var result map[string]interface{}
	switch agent {
	case models.AgentTeachingAids:
		aidType := str("aid_type", "worksheet")
		result = map[string]interface{}{
			"content": fmt.Sprintf("Generated %s for %s - %s (Grade %s)", aidType, str("subject", ""), str("topic", ""), str("grade", "")),
			"type":    aidType,
			"subject": str("subject", ""),
			"topic":   str("topic", ""),
		}
	case models.AgentLessonPlan:
		duration := str("duration", "45")
		result = map[string]interface{}{
			"content":    fmt.Sprintf("Generated lesson plan for %s - %s (%s mins)", str("subject", ""), str("topic", ""), duration),
			"duration":   input["duration"],
			"activities": []string{"Introduction", "Main Activity", "Assessment", "Conclusion"},
		}
	case models.AgentAssessment:
		kind := str("assessment_type", "quiz")
		result = map[string]interface{}{
			"content":   fmt.Sprintf("Generated %s for %s - %s", kind, str("subject", ""), str("topic", "")),
			"questions": []string{"Question 1", "Question 2", "Question 3"},
			"type":      kind,
		}
	case models.AgentTranslation:
		source, target := str("source_language", LanguageEnglish), str("target_language", "")
		result = map[string]interface{}{
			"translated_text": fmt.Sprintf("[Translated from %s to %s] %s", source, target, str("text", "")),
			"source_language": source,
			"target_language": target,
		}
	case models.AgentStoryteller:
		topic := str("topic", "")
		result = map[string]interface{}{
			"content": fmt.Sprintf("Generated educational story about %s for Grade %s", topic, str("grade", "")),
			"title":   fmt.Sprintf("The Adventures of %s", topic),
			"moral":   str("moral", "Learning is fun!"),
		}
	case models.AgentImageAnalysis:
		path := str("image_path", "")
		result = map[string]interface{}{
			"analysis":         fmt.Sprintf("Image analysis for %s", path),
			"objects_detected": []string{"educational content", "text"},
			"text_extracted":   "Sample educational text",
		}
	case models.AgentEvaluation:
		result = map[string]interface{}{
			"overall_score":         80,
			"grade_level":           "Good",
			"student_name":          str("student_name", "Student"),
			"subject":               str("subject", ""),
			"topic":                 str("topic", ""),
			"strengths":             []string{"Completed the worksheet", "Clear handwriting"},
			"areas_for_improvement": []string{"Show working for each step"},
			"detailed_feedback":     fmt.Sprintf("Demo evaluation of a %s worksheet on %s", str("subject", "general"), str("topic", "the assigned topic")),
		}
	}
	result["success"] = true
	result["demo"] = true
	return result
}
