package veracore

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/3plops/putaway/internal/config"
	"github.com/3plops/putaway/internal/domain/models"
)

// ReportFilter is a backend-defined filter object passed through verbatim on
// report submission.
type ReportFilter map[string]any

// Client wraps the VeraCore Public API operations used by the putaway
// pipeline: authentication, on-demand reports, and LPN moves.
type Client struct {
	httpClient *resty.Client
	username   string
	password   string
	systemID   string
	logger     *zap.Logger
}

// NewClient builds a VeraCore API client using the provided configuration values.
func NewClient(cfg config.VeraCoreConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetAuthScheme("bearer").
		SetTimeout(cfg.Timeout)

	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &Client{
		httpClient: restyClient,
		username:   cfg.Username,
		password:   cfg.Password,
		systemID:   cfg.SystemID,
		logger:     logger,
	}
}

// SetToken installs the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.httpClient.SetAuthToken(token)
}

type loginResponse struct {
	Token             string `json:"Token"`
	UtcExpirationDate string `json:"UtcExpirationDate"`
}

// Login exchanges the configured credentials for a bearer token and installs
// it on the client.
func (c *Client) Login(ctx context.Context) (string, error) {
	payload := map[string]string{
		"userName": c.username,
		"password": c.password,
		"systemId": c.systemID,
	}

	result := new(loginResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		Post("/api/login")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	if resp.StatusCode() != http.StatusOK || result.Token == "" {
		c.logger.Warn("login rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return "", fmt.Errorf("%w: login returned status %d", ErrAuthFailed, resp.StatusCode())
	}

	c.logger.Info("authenticated with veracore", zap.String("token_expires", result.UtcExpirationDate))
	c.SetToken(result.Token)
	return result.Token, nil
}

// TokenValid asks the backend whether the installed token is still usable.
func (c *Client) TokenValid(ctx context.Context) bool {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/api/token")
	if err != nil || resp.StatusCode() != http.StatusOK {
		return false
	}

	status := strings.ToLower(strings.Trim(resp.String(), `" `))
	return strings.Contains(status, "valid") && !strings.Contains(status, "invalid")
}

// EnsureToken makes sure a valid bearer token is installed, logging in when
// the current one is missing or rejected. Failure here is fatal for a run.
func (c *Client) EnsureToken(ctx context.Context) error {
	if c.TokenValid(ctx) {
		return nil
	}

	if c.username == "" {
		return fmt.Errorf("%w: token invalid and no credentials configured", ErrAuthFailed)
	}

	c.logger.Info("token missing or invalid, requesting a new one")
	_, err := c.Login(ctx)
	return err
}

type submitReportResponse struct {
	TaskID string `json:"TaskId"`
}

// SubmitReport starts a report task and returns its task identifier.
func (c *Client) SubmitReport(ctx context.Context, reportName string, filters []ReportFilter) (string, error) {
	if filters == nil {
		filters = []ReportFilter{}
	}
	payload := map[string]any{
		"reportName": reportName,
		"filters":    filters,
	}

	result := new(submitReportResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		Post("/api/reports")
	if err != nil {
		return "", &SubmissionError{Report: reportName, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &SubmissionError{
			Report: reportName,
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()),
		}
	}

	if result.TaskID == "" {
		return "", &SubmissionError{Report: reportName, Err: fmt.Errorf("response carried no task id")}
	}

	return result.TaskID, nil
}

type reportStatusResponse struct {
	Status string `json:"Status"`
}

// ReportStatus fetches the current state of a report task. The raw backend
// status string is returned alongside the mapped state for logging.
func (c *Client) ReportStatus(ctx context.Context, taskID string) (ReportState, string, error) {
	result := new(reportStatusResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		Get(fmt.Sprintf("/api/reports/%s/status", taskID))
	if err != nil {
		return StateUnknown, "", &TransportError{Operation: "report status", StatusCode: 0, Body: err.Error()}
	}

	if resp.StatusCode() != http.StatusOK {
		return StateUnknown, "", &TransportError{
			Operation:  "report status",
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return mapReportStatus(result.Status), result.Status, nil
}

type reportResultResponse struct {
	Data []models.Row `json:"Data"`
}

// ReportResult fetches the materialized rows of a finished report task.
func (c *Client) ReportResult(ctx context.Context, taskID string) (models.Table, error) {
	result := new(reportResultResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		Get(fmt.Sprintf("/api/reports/%s", taskID))
	if err != nil {
		return models.Table{}, &TransportError{Operation: "report result", StatusCode: 0, Body: err.Error()}
	}

	if resp.StatusCode() != http.StatusOK {
		return models.Table{}, &TransportError{
			Operation:  "report result",
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return models.Table{Rows: result.Data}, nil
}

// MoveUnit asks the backend to move an LPN to the given location. The unit
// identifier must already be in backend form (tag prefix stripped).
func (c *Client) MoveUnit(ctx context.Context, unitID, locationID string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("locationId", locationID).
		Put(fmt.Sprintf("/api/inventory/lpns/%s/move", unitID))
	if err != nil {
		return &MoveError{UnitID: unitID, LocationID: locationID, StatusCode: 0, Body: err.Error()}
	}

	if resp.StatusCode() != http.StatusOK {
		return &MoveError{
			UnitID:     unitID,
			LocationID: locationID,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return nil
}
