// Package identity talks to the auth service for user profile lookups. When
// the service is unreachable it synthesizes a degraded placeholder profile so
// processing and notification never block on identity availability.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

const defaultTimeout = 5 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

type userEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		Name        string `json:"name"`
		IsActive    bool   `json:"isActive"`
		Preferences *struct {
			Email bool `json:"emailNotifications"`
			Push  bool `json:"pushNotifications"`
			SMS   bool `json:"smsNotifications"`
		} `json:"preferences"`
	} `json:"data"`
}

// GetUserByID returns the user's profile, nil for a confirmed 404, or a
// degraded placeholder when the auth service cannot be reached.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*entity.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/users/%s", c.baseURL, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("auth service unreachable, using degraded profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return c.degradedProfile(userID), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Warn("user not found on auth service", zap.String("user_id", userID))
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("auth service returned unexpected status, using degraded profile",
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
		)
		return c.degradedProfile(userID), nil
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Warn("failed to decode auth service response, using degraded profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return c.degradedProfile(userID), nil
	}
	if !envelope.Success {
		return nil, nil
	}

	profile := &entity.UserProfile{
		ID:       envelope.Data.ID,
		Email:    envelope.Data.Email,
		Name:     envelope.Data.Name,
		IsActive: envelope.Data.IsActive,
		Prefs: entity.NotificationPreferences{
			Email: true,
			Push:  true,
		},
	}
	if p := envelope.Data.Preferences; p != nil {
		profile.Prefs = entity.NotificationPreferences{Email: p.Email, Push: p.Push, SMS: p.SMS}
	}
	return profile, nil
}

func (c *Client) degradedProfile(userID string) *entity.UserProfile {
	return &entity.UserProfile{
		ID:       userID,
		Email:    fmt.Sprintf("user-%s@placeholder.invalid", userID),
		Name:     fmt.Sprintf("User %s", userID),
		IsActive: true,
		Degraded: true,
		Prefs: entity.NotificationPreferences{
			Email: true,
			Push:  true,
		},
	}
}
