package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"ledger-service/internal/models"
	"ledger-service/internal/util"

	"go.uber.org/zap"
)

// Store is the consumed interface of the remote tabular store. Services
// depend on this interface; Client is the production implementation.
type Store interface {
	ReadRange(ctx context.Context, rangeName string) ([]Record, error)
	AppendRow(ctx context.Context, rangeName string, values []interface{}) error
	UpdateRow(ctx context.Context, cellRange string, values []interface{}) error
	DeleteRow(ctx context.Context, sheetName string, rowNumber int) error
}

// TokenSource supplies the bearer credential for each call. Obtaining and
// refreshing the credential belongs to the authentication collaborator.
type TokenSource func() string

// Client talks to the spreadsheet API over authenticated HTTP. It offers
// no transactions: every call is an independent write or read.
type Client struct {
	baseURL       string
	spreadsheetID string
	token         TokenSource
	httpClient    *http.Client
	logger        *zap.Logger

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewClient creates a store client. baseURL is the API root, e.g.
// "https://sheets.googleapis.com/v4/spreadsheets".
func NewClient(baseURL, spreadsheetID string, token TokenSource) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		spreadsheetID: spreadsheetID,
		token:         token,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		logger:        util.GetLogger(),
		sheetIDs:      make(map[string]int64),
	}
}

type valuesResponse struct {
	Values [][]interface{} `json:"values"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ReadRange fetches a named range. The first row is treated as the
// header; remaining rows are zipped into Records. An empty range yields
// no records.
func (c *Client) ReadRange(ctx context.Context, rangeName string) ([]Record, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s", c.baseURL, c.spreadsheetID, url.PathEscape(rangeName))

	body, err := c.do(ctx, http.MethodGet, endpoint, nil, "read", rangeName)
	if err != nil {
		return nil, err
	}

	var resp valuesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &models.TransportError{Op: "read", Range: rangeName, Err: err}
	}

	if len(resp.Values) < 2 {
		return nil, nil
	}
	return ZipRows(resp.Values[0], resp.Values[1:]), nil
}

// AppendRow appends one row whose positional values follow the target
// sheet's fixed column order.
func (c *Client) AppendRow(ctx context.Context, rangeName string, values []interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(rangeName))

	payload := map[string]interface{}{"values": [][]interface{}{values}}
	_, err := c.do(ctx, http.MethodPost, endpoint, payload, "append", rangeName)
	return err
}

// UpdateRow overwrites the row span addressed by cellRange, e.g.
// "Customers!A5:G5".
func (c *Client) UpdateRow(ctx context.Context, cellRange string, values []interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/values/%s?valueInputOption=USER_ENTERED",
		c.baseURL, c.spreadsheetID, url.PathEscape(cellRange))

	payload := map[string]interface{}{"values": [][]interface{}{values}}
	_, err := c.do(ctx, http.MethodPut, endpoint, payload, "update", cellRange)
	return err
}

// DeleteRow removes a single 1-based row from the named sheet. The
// sheet's internal numeric ID is resolved from metadata and cached.
func (c *Client) DeleteRow(ctx context.Context, sheetName string, rowNumber int) error {
	sheetID, err := c.sheetID(ctx, sheetName)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s:batchUpdate", c.baseURL, c.spreadsheetID)
	payload := map[string]interface{}{
		"requests": []interface{}{
			map[string]interface{}{
				"deleteDimension": map[string]interface{}{
					"range": map[string]interface{}{
						"sheetId":    sheetID,
						"dimension":  "ROWS",
						"startIndex": rowNumber - 1,
						"endIndex":   rowNumber,
					},
				},
			},
		},
	}

	_, err = c.do(ctx, http.MethodPost, endpoint, payload, "delete", sheetName)
	return err
}

type spreadsheetMeta struct {
	Sheets []struct {
		Properties struct {
			SheetID int64  `json:"sheetId"`
			Title   string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (c *Client) sheetID(ctx context.Context, sheetName string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[sheetName]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/%s?fields=sheets.properties", c.baseURL, c.spreadsheetID)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, "metadata", sheetName)
	if err != nil {
		return 0, err
	}

	var meta spreadsheetMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return 0, &models.TransportError{Op: "metadata", Range: sheetName, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range meta.Sheets {
		c.sheetIDs[s.Properties.Title] = s.Properties.SheetID
	}
	if id, ok := c.sheetIDs[sheetName]; ok {
		return id, nil
	}
	return 0, &models.TransportError{
		Op:      "metadata",
		Range:   sheetName,
		Message: fmt.Sprintf("sheet %q not found", sheetName),
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload interface{}, op, rangeName string) ([]byte, error) {
	start := time.Now()
	defer func() {
		util.StoreRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, &models.TransportError{Op: op, Range: rangeName, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &models.TransportError{Op: op, Range: rangeName, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts are not distinguished from other transport failures.
		return nil, &models.TransportError{Op: op, Range: rangeName, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.TransportError{Op: op, Range: rangeName, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		_ = json.Unmarshal(raw, &ae)

		te := models.TransportError{
			Op:      op,
			Range:   rangeName,
			Status:  resp.StatusCode,
			Message: ae.Error.Message,
		}
		c.logger.Warn("store call failed",
			zap.String("op", op),
			zap.String("range", rangeName),
			zap.Int("status", resp.StatusCode),
			zap.String("message", ae.Error.Message))

		if resp.StatusCode == http.StatusTooManyRequests ||
			strings.Contains(ae.Error.Message, "Quota") ||
			ae.Error.Status == "RESOURCE_EXHAUSTED" {
			return nil, &models.RateLimitError{TransportError: te}
		}
		return nil, &te
	}

	return raw, nil
}
