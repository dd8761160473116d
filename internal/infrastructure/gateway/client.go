// Package gateway talks to the remote employee authentication and
// attendance-recording service.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/attendance-kiosk/internal/core/domain"
	"github.com/99minutos/attendance-kiosk/internal/core/ports"
	"github.com/99minutos/attendance-kiosk/pkg/logger"
)

const (
	// FallbackClientIP is reported when the public address cannot be resolved.
	FallbackClientIP = "127.0.0.1"

	scanTimeLayout   = "15:04:05"
	maxResponseBytes = 1 << 20
	defaultTimeout   = 15 * time.Second
)

// Config captures the remote endpoints.
type Config struct {
	BaseURL     string
	IPLookupURL string
	Timeout     time.Duration
}

// Client implements ports.Gateway over HTTP/JSON.
type Client struct {
	baseURL     string
	ipLookupURL string
	http        *http.Client
	log         zerolog.Logger
}

var _ ports.Gateway = (*Client)(nil)

// NewClient builds a client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		ipLookupURL: cfg.IPLookupURL,
		http:        httpClient,
		log:         log,
	}
}

type loginRequest struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	Employee *domain.Identity `json:"employee"`
}

type attendanceRequest struct {
	ScanTime          string `json:"scan_time"`
	OperatorID        string `json:"tg_id"`
	Hash              string `json:"hash"`
	SiteCoordinate    string `json:"lat_lon"`
	ClientIP          string `json:"ipv4"`
	CurrentCoordinate string `json:"current_lat_lon"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Authenticate exchanges an employee code and phone for a token and profile.
func (c *Client) Authenticate(ctx context.Context, code, phone string) (*ports.AuthResult, error) {
	body, err := c.postJSON(ctx, "/auth/employee-login", "", loginRequest{Code: code, Phone: phone})
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("authenticate: decode response: %w: %w", domain.ErrNetwork, err)
	}
	return &ports.AuthResult{Token: resp.Token, Identity: resp.Employee}, nil
}

// CheckIn records an arrival.
func (c *Client) CheckIn(ctx context.Context, credential domain.Credential, record domain.SubmissionRecord) error {
	return c.submit(ctx, domain.DirectionCheckIn, credential, record)
}

// CheckOut records a departure.
func (c *Client) CheckOut(ctx context.Context, credential domain.Credential, record domain.SubmissionRecord) error {
	return c.submit(ctx, domain.DirectionCheckOut, credential, record)
}

func (c *Client) submit(ctx context.Context, dir domain.Direction, credential domain.Credential, record domain.SubmissionRecord) error {
	req := attendanceRequest{
		ScanTime:          record.ScanTime.Format(scanTimeLayout),
		OperatorID:        record.OperatorID,
		Hash:              record.IntegrityHash,
		SiteCoordinate:    record.SiteCoordinate,
		ClientIP:          record.ClientIP,
		CurrentCoordinate: record.CurrentCoordinate,
	}
	c.log.Debug().
		Str("direction", string(dir)).
		Str("token", logger.TokenPreview(string(credential))).
		Str("scan_time", req.ScanTime).
		Str("site", req.SiteCoordinate).
		Msg("submitting attendance")

	if _, err := c.postJSON(ctx, "/attendance/"+string(dir), credential, req); err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}
	return nil
}

// ResolveClientAddress looks up the public IPv4 address of the kiosk.
func (c *Client) ResolveClientAddress(ctx context.Context) string {
	if c.ipLookupURL == "" {
		return FallbackClientIP
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ipLookupURL, nil)
	if err != nil {
		return FallbackClientIP
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Msg("ip lookup failed")
		return FallbackClientIP
	}
	defer resp.Body.Close()

	var out struct {
		IP string `json:"ip"`
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Msg("ip lookup failed")
		return FallbackClientIP
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		c.log.Warn().Err(err).Msg("ip lookup returned an unreadable body")
		return FallbackClientIP
	}
	ip := net.ParseIP(strings.TrimSpace(out.IP))
	if ip == nil || ip.To4() == nil {
		return FallbackClientIP
	}
	return ip.String()
}

// postJSON sends payload and returns the body of a 2xx response. Other
// statuses become *domain.RemoteError; transport failures wrap
// domain.ErrNetwork.
func (c *Client) postJSON(ctx context.Context, path string, credential domain.Credential, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+string(credential))
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrNetwork, err)
	}
	c.log.Debug().
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("remote call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		return nil, &domain.RemoteError{Status: resp.StatusCode, Message: strings.TrimSpace(e.Message)}
	}
	return body, nil
}
