package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

const googleCalendarScope = "https://www.googleapis.com/auth/calendar"

// ConnectionResult 연동 테스트 결과. 실패해도 폼 상태는 바뀌지 않는다.
type ConnectionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type ConnectionService interface {
	TestGoogle(ctx context.Context, setup wizard.GoogleSetup) ConnectionResult
	TestLine(ctx context.Context, setup wizard.LineSetup) ConnectionResult
}

type connectionService struct {
	httpClient     *http.Client
	lineAPIBaseURL string
	googleTokenURL string
}

func NewConnectionService(lineAPIBaseURL, googleTokenURL string, timeout time.Duration) ConnectionService {
	return &connectionService{
		httpClient:     &http.Client{Timeout: timeout},
		lineAPIBaseURL: strings.TrimRight(lineAPIBaseURL, "/"),
		googleTokenURL: googleTokenURL,
	}
}

// TestGoogle 입력된 서비스 계정으로 액세스 토큰 발급을 시도한다.
func (s *connectionService) TestGoogle(ctx context.Context, setup wizard.GoogleSetup) ConnectionResult {
	if setup.ServiceAccountEmail == "" || setup.PrivateKey == "" {
		return ConnectionResult{OK: false, Message: "Upload a service account key file first"}
	}

	cfg := &jwt.Config{
		Email:      setup.ServiceAccountEmail,
		PrivateKey: []byte(setup.PrivateKey),
		Scopes:     []string{googleCalendarScope},
		TokenURL:   s.googleTokenURL,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	if _, err := cfg.TokenSource(ctx).Token(); err != nil {
		logger.Warn("Google connection test failed", map[string]interface{}{
			"service_account": setup.ServiceAccountEmail,
			"error":           err.Error(),
		})
		return ConnectionResult{OK: false, Message: "Could not authenticate with Google using this service account"}
	}

	logger.Info("Google connection test succeeded", map[string]interface{}{
		"service_account": setup.ServiceAccountEmail,
	})
	return ConnectionResult{OK: true, Message: fmt.Sprintf("Connected as %s", setup.ServiceAccountEmail)}
}

type lineBotInfo struct {
	UserID      string `json:"userId"`
	BasicID     string `json:"basicId"`
	DisplayName string `json:"displayName"`
}

// TestLine 채널 액세스 토큰으로 봇 정보 API를 호출한다.
func (s *connectionService) TestLine(ctx context.Context, setup wizard.LineSetup) ConnectionResult {
	if strings.TrimSpace(setup.AccessToken) == "" {
		return ConnectionResult{OK: false, Message: "Enter the channel access token first"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.lineAPIBaseURL+"/v2/bot/info", nil)
	if err != nil {
		return ConnectionResult{OK: false, Message: "Could not reach LINE"}
	}
	req.Header.Set("Authorization", "Bearer "+setup.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("LINE connection test failed", map[string]interface{}{
			"channel_id": setup.ChannelID,
			"error":      err.Error(),
		})
		return ConnectionResult{OK: false, Message: "Could not reach LINE"}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ConnectionResult{OK: false, Message: "LINE rejected the channel access token"}
	case resp.StatusCode >= 300:
		logger.Warn("LINE connection test returned unexpected status", map[string]interface{}{
			"channel_id":  setup.ChannelID,
			"status_code": resp.StatusCode,
		})
		return ConnectionResult{OK: false, Message: fmt.Sprintf("LINE responded with status %d", resp.StatusCode)}
	}

	var info lineBotInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.DisplayName == "" {
		return ConnectionResult{OK: true, Message: "Connected to LINE"}
	}
	return ConnectionResult{OK: true, Message: fmt.Sprintf("Connected to LINE bot %q", info.DisplayName)}
}
