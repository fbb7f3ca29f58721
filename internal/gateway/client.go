// Package gateway is the HTTP client for the grading API, used by the
// evaluation session to load sheets and persist grades.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gradewise/evaluation-service/internal/models"
)

// APIError is a non-2xx response from the grading API. Detail carries the
// server's human-readable message when the body had one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// ErrorDetail returns the server-supplied message for user display.
func (e *APIError) ErrorDetail() string { return e.Detail }

// Client talks to the grading API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a client with a caller-supplied http.Client,
// used by tests and callers needing custom transports.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) GetAnswerSheet(ctx context.Context, sheetID string) (*models.AnswerSheet, error) {
	var sheet models.AnswerSheet
	if err := c.get(ctx, "/api/answer-sheets/"+url.PathEscape(sheetID), &sheet); err != nil {
		return nil, fmt.Errorf("get answer sheet %s: %w", sheetID, err)
	}
	return &sheet, nil
}

func (c *Client) GetExam(ctx context.Context, examID string) (*models.Exam, error) {
	var exam models.Exam
	if err := c.get(ctx, "/api/exams/"+url.PathEscape(examID), &exam); err != nil {
		return nil, fmt.Errorf("get exam %s: %w", examID, err)
	}
	return &exam, nil
}

func (c *Client) GetSubject(ctx context.Context, subjectID string) (*models.Subject, error) {
	var subject models.Subject
	if err := c.get(ctx, "/api/subjects/"+url.PathEscape(subjectID), &subject); err != nil {
		return nil, fmt.Errorf("get subject %s: %w", subjectID, err)
	}
	return &subject, nil
}

func (c *Client) UpdateGrade(ctx context.Context, sheetID string, sub *models.GradeSubmission) (*models.AnswerSheet, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("marshal grade submission: %w", err)
	}

	path := "/api/answer-sheets/" + url.PathEscape(sheetID) + "/grade"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var sheet models.AnswerSheet
	if err := c.do(req, &sheet); err != nil {
		return nil, fmt.Errorf("update grade for sheet %s: %w", sheetID, err)
	}
	return &sheet, nil
}

func (c *Client) get(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseAPIError extracts the detail field from an error body. Bodies that
// are not JSON or lack the field still yield an APIError with the status.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Detail = parsed.Detail
	}
	return apiErr
}
