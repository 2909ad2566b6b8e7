package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a thin request/response boundary to the external message service.
// The service is treated as a remote, partially-unreliable dependency: every
// call is bounded by the configured timeout and failures are normalized to
// the error values in errors.go. The client never retries.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new message service client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// idEnvelope covers both response nestings the service is known to produce:
// {"data":{"dialogId":...}} and {"dialogId":...}.
type idEnvelope struct {
	Data *struct {
		UserID   string `json:"userId"`
		DialogID string `json:"dialogId"`
	} `json:"data"`
	UserID   string `json:"userId"`
	DialogID string `json:"dialogId"`
}

func (e *idEnvelope) userID() string {
	if e.Data != nil && e.Data.UserID != "" {
		return e.Data.UserID
	}
	return e.UserID
}

func (e *idEnvelope) dialogID() string {
	if e.Data != nil && e.Data.DialogID != "" {
		return e.Data.DialogID
	}
	return e.DialogID
}

// CreateUser registers a user or bot and returns its service-side identifier.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (string, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/users", nil, req)
	if err != nil {
		return "", err
	}

	var env idEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if env.userID() == "" {
		return "", fmt.Errorf("%w: userId missing in create-user response", ErrUnexpectedResponse)
	}
	return env.userID(), nil
}

// CreateDialog creates a dialog and returns its service-side identifier.
func (c *Client) CreateDialog(ctx context.Context, req CreateDialogRequest) (string, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/dialogs", nil, req)
	if err != nil {
		return "", err
	}

	var env idEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if env.dialogID() == "" {
		return "", fmt.Errorf("%w: dialogId missing in create-dialog response", ErrUnexpectedResponse)
	}
	return env.dialogID(), nil
}

// AddMember enrolls one more member into an existing dialog.
func (c *Client) AddMember(ctx context.Context, dialogID string, member Member) error {
	path := fmt.Sprintf("/dialogs/%s/members/add", url.PathEscape(dialogID))
	_, err := c.doRequest(ctx, http.MethodPost, path, nil, member)
	return err
}

// PostMessage stores one message in a dialog and returns its receipt.
func (c *Client) PostMessage(ctx context.Context, dialogID string, req PostMessageRequest) (*MessageReceipt, error) {
	path := fmt.Sprintf("/dialogs/%s/messages", url.PathEscape(dialogID))
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}

	var env struct {
		Data      *MessageReceipt `json:"data"`
		MessageID string          `json:"messageId"`
		CreatedAt time.Time       `json:"createdAt"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	receipt := MessageReceipt{MessageID: env.MessageID, CreatedAt: env.CreatedAt}
	if env.Data != nil && env.Data.MessageID != "" {
		receipt = *env.Data
	}
	if receipt.MessageID == "" {
		return nil, fmt.Errorf("%w: messageId missing in post-message response", ErrUnexpectedResponse)
	}
	return &receipt, nil
}

// ListMessages fetches one page of messages, newest first.
func (c *Client) ListMessages(ctx context.Context, dialogID string, opt ListMessagesOptions) (*MessagePage, error) {
	query := url.Values{}
	if opt.Page > 0 {
		query.Set("page", strconv.Itoa(opt.Page))
	}
	if opt.Limit > 0 {
		query.Set("limit", strconv.Itoa(opt.Limit))
	}
	query.Set("sort", "(createdAt,desc)")
	if opt.Before != nil {
		query.Set("filter", fmt.Sprintf("(createdAt,lt,%s)", opt.Before.UTC().Format(time.RFC3339Nano)))
	}

	path := fmt.Sprintf("/dialogs/%s/messages", url.PathEscape(dialogID))
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var env struct {
		Data    []Message `json:"data"`
		HasMore bool      `json:"hasMore"`
		Total   int       `json:"total"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	total := env.Total
	if total == 0 {
		total = len(env.Data)
	}
	return &MessagePage{Messages: env.Data, HasMore: env.HasMore, Total: total}, nil
}

// GetMemberUnread reads the unread counter the service keeps for one member
// of a dialog. Returns zero when the member is not found.
func (c *Client) GetMemberUnread(ctx context.Context, dialogID, memberUserID string) (int, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("(userId,eq,%s)", memberUserID))

	path := fmt.Sprintf("/dialogs/%s/members", url.PathEscape(dialogID))
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}

	var env struct {
		Data []MemberState `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	for _, member := range env.Data {
		if member.UserID == memberUserID {
			return member.State.UnreadCount, nil
		}
	}
	return 0, nil
}

// doRequest performs one HTTP call against the message service API.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	var reqBody *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-API-Key", c.config.APIKey)
	req.Header.Set("X-Tenant-ID", c.config.TenantID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Covers refused connections, DNS failures and the client timeout
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(body, 256))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestRejected, resp.StatusCode, truncate(body, 256))
	}

	return body, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// IsUnavailable reports whether err represents an unreachable or failing
// upstream, as opposed to a rejected or malformed request.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
