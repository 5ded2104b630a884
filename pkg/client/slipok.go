package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// SlipOKClient verifies payment slips against the SlipOK HTTP API.
// The API accepts a slip image plus the expected amount and answers with
// either structured slip data or a rejection message and code.
type SlipOKClient struct {
	BaseURL    string
	BranchID   string
	APIKey     string
	HTTPClient *http.Client
}

func NewSlipOKClient(baseURL, branchID, apiKey string) *SlipOKClient {
	return &SlipOKClient{
		BaseURL:  baseURL,
		BranchID: branchID,
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SlipData is the accepted-slip payload returned by the verifier.
type SlipData struct {
	TransRef      string  `json:"transRef"`
	Amount        float64 `json:"amount"`
	Sender        string  `json:"sender,omitempty"`
	Receiver      string  `json:"receiver,omitempty"`
	TransDate     string  `json:"transDate,omitempty"`
	TransTime     string  `json:"transTime,omitempty"`
	ReceivingBank string  `json:"receivingBank,omitempty"`
}

// SlipRejectedError is returned when the verifier rejects a slip.
type SlipRejectedError struct {
	Message string
	Code    string
}

func (e *SlipRejectedError) Error() string {
	return fmt.Sprintf("slip rejected (%s): %s", e.Code, e.Message)
}

type slipOKResponse struct {
	Success bool            `json:"success"`
	Data    *SlipData       `json:"data"`
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
}

// Verify submits the slip image at slipPath together with the expected
// amount. It returns the verifier's slip data on acceptance, a
// *SlipRejectedError on rejection, or a transport error.
func (c *SlipOKClient) Verify(ctx context.Context, slipPath string, amount float64) (*SlipData, error) {
	file, err := os.Open(slipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open slip file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("files", filepath.Base(slipPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read slip file: %w", err)
	}
	if err := writer.WriteField("log", "true"); err != nil {
		return nil, fmt.Errorf("failed to write log field: %w", err)
	}
	if err := writer.WriteField("amount", strconv.FormatFloat(amount, 'f', 2, 64)); err != nil {
		return nil, fmt.Errorf("failed to write amount field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.BaseURL, c.BranchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-authorization", c.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slip verification request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read verifier response: %w", err)
	}

	var parsed slipOKResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode verifier response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success || parsed.Data == nil {
		msg := parsed.Message
		if msg == "" {
			msg = "Invalid slip"
		}
		return nil, &SlipRejectedError{
			Message: msg,
			Code:    string(bytes.Trim(parsed.Code, `"`)),
		}
	}

	return parsed.Data, nil
}
