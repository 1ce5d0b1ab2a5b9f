package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"hornethelper/internal/cache"
	"hornethelper/internal/config"
	"hornethelper/internal/model"
)

// AssistantApology is returned in place of an answer whenever the assistant cannot be reached
const AssistantApology = "I apologize, but I'm having trouble processing your request right now. Please try again later."

// RecommendationService talks to the external study-help service
type RecommendationService struct {
	config config.RecommenderConfig
	client *http.Client
	cache  cache.RecommendationCache
}

// NewRecommendationService creates a new recommendation service. videoCache may be nil.
func NewRecommendationService(cfg config.RecommenderConfig, videoCache cache.RecommendationCache) *RecommendationService {
	return &RecommendationService{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		cache: videoCache,
	}
}

// Ask forwards a question to the assistant. Any failure yields the canned apology, never an error.
func (s *RecommendationService) Ask(ctx context.Context, message string) (*model.AskResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if !s.config.IsEnabled() {
		return &model.AskResponse{Response: AssistantApology}, nil
	}

	var resp model.AskResponse
	if err := s.post(ctx, "/api/ask-ai", model.AskRequest{Message: message}, &resp); err != nil {
		slog.WarnContext(ctx, "Assistant request failed", "error", err)
		return &model.AskResponse{Response: AssistantApology}, nil
	}
	if strings.TrimSpace(resp.Response) == "" {
		return &model.AskResponse{Response: AssistantApology}, nil
	}
	return &resp, nil
}

// RecommendVideos returns videos for a major, cached per major
func (s *RecommendationService) RecommendVideos(ctx context.Context, major string) ([]model.Video, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return nil, ErrInvalidMajor
	}

	if s.cache != nil {
		cached, err := s.cache.GetVideos(ctx, major)
		if err != nil {
			slog.WarnContext(ctx, "Video cache read failed", "major", major, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}
	if !s.config.IsEnabled() {
		return []model.Video{}, nil
	}

	videos := []model.Video{}
	if err := s.post(ctx, "/api/recommend-video", model.VideoRequest{Major: major}, &videos); err != nil {
		if errors.Is(err, errNoRecommendations) {
			return []model.Video{}, nil
		}
		return nil, fmt.Errorf("failed to get video recommendations: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetVideos(ctx, major, videos); err != nil {
			slog.WarnContext(ctx, "Video cache write failed", "major", major, "error", err)
		}
	}
	return videos, nil
}

var errNoRecommendations = errors.New("no recommendations found")

func (s *RecommendationService) post(ctx context.Context, path string, reqBody, out interface{}) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint(path), bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return errNoRecommendations
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recommender returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, out)
}
