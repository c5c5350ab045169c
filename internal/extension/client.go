// Package extension talks to the optional external editing service an event
// can delegate review decisions to.
package extension

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/debemdeboas/editorial/internal/config"
	"github.com/debemdeboas/editorial/internal/model"
	"github.com/rs/zerolog"
)

var extLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	extLogger = l
}

// Bodies larger than this are treated as malformed.
const maxResponseSize = 1 << 20

// Client calls the service hooks. Every call blocks until the service answers
// or the timeout expires.
type Client struct {
	http      *http.Client
	userAgent string
	urls      URLBuilder
}

func NewClient(timeout time.Duration, userAgent, publicURL string) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		urls:      URLBuilder{PublicURL: publicURL},
	}
}

func (c *Client) URLs() URLBuilder {
	return c.urls
}

func escapeSegment(s string) string {
	return url.PathEscape(s)
}

func eventPath(s *model.EditingSettings) string {
	return "/event/" + escapeSegment(s.ServiceIdentifier)
}

func editablePath(s *model.EditingSettings, e *model.Editable) string {
	return eventPath(s) + "/editable/" + escapeSegment(string(e.Type)) + "/" + escapeSegment(string(e.ContributionID))
}

func revisionPath(s *model.EditingSettings, e *model.Editable, rev model.RevisionID) string {
	return editablePath(s, e) + "/" + escapeSegment(string(rev))
}

// do sends body as JSON and decodes the response into out when out is not nil.
func (c *Client) do(ctx context.Context, op string, s *model.EditingSettings, method, path string, body, out any) error {
	if !s.ServiceConnected() {
		return &RequestFailedError{Op: op, Message: "no editing service configured"}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RequestFailedError{Op: op, Message: err.Error(), Err: err}
		}
		reader = bytes.NewReader(data)
	}

	target := strings.TrimRight(s.ServiceURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &RequestFailedError{Op: op, Message: err.Error(), Err: err}
	}
	req.Header.Set(config.HAuthorization, "Bearer "+s.ServiceToken)
	req.Header.Set("Accept", config.CTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set(config.HCType, config.CTypeJSON)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		extLogger.Error().Err(err).Str("op", op).Str("url", target).Msg("Extension request failed")
		return &RequestFailedError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &RequestFailedError{Op: op, Message: err.Error(), StatusCode: resp.StatusCode, Err: err}
	}

	extLogger.Debug().
		Str("op", op).
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Extension request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		var errBody errorResponse
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		extLogger.Warn().Str("op", op).Int("status", resp.StatusCode).Str("error", msg).Msg("Extension returned an error")
		return &RequestFailedError{Op: op, Message: msg, StatusCode: resp.StatusCode}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &RequestFailedError{Op: op, Message: "invalid response: " + err.Error(), StatusCode: resp.StatusCode, Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return &RequestFailedError{Op: op, Message: "invalid response: " + err.Error(), StatusCode: resp.StatusCode, Err: err}
		}
	}
	return nil
}

// NotifyEnabled registers the event with the service.
func (c *Client) NotifyEnabled(ctx context.Context, s *model.EditingSettings) error {
	body := EnabledRequest{
		EventID:   s.EventID,
		URL:       c.urls.PublicURL,
		Token:     s.ServiceToken,
		Endpoints: c.urls.Endpoints(s.EventID),
	}
	return c.do(ctx, "notify_enabled", s, http.MethodPut, eventPath(s), body, nil)
}

func (c *Client) NotifyDisconnected(ctx context.Context, s *model.EditingSettings) error {
	return c.do(ctx, "notify_disconnected", s, http.MethodDelete, eventPath(s), nil, nil)
}

func (c *Client) Status(ctx context.Context, s *model.EditingSettings) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, "service_status", s, http.MethodGet, eventPath(s), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NotifyNewEditable(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, rev *model.Revision, actor model.UserID) (*NewEditableResponse, error) {
	body := NewEditableRequest{
		Editable: NewEditablePayload(e, state),
		Revision: c.urls.RevisionPayload(e, rev),
		User:     actor,
	}

	var resp NewEditableResponse
	if err := c.do(ctx, "notify_new_editable", s, http.MethodPut, editablePath(s, e), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NotifyReview(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, actor model.UserID, action string, parent, rev *model.Revision) (*ReviewResponse, error) {
	body := ReviewRequest{
		Action:   action,
		Editable: NewEditablePayload(e, state),
		Revision: c.urls.RevisionPayload(e, rev),
		Parent:   c.urls.RevisionPayload(e, parent),
		User:     actor,
	}

	var resp ReviewResponse
	if err := c.do(ctx, "notify_review", s, http.MethodPost, revisionPath(s, e, rev.ID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CustomActions never fails: errors are logged and reported as no actions.
func (c *Client) CustomActions(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, rev *model.Revision, actor model.UserID) []CustomAction {
	body := RevisionRequest{
		Editable: NewEditablePayload(e, state),
		Revision: c.urls.RevisionPayload(e, rev),
		User:     actor,
	}

	var resp customActionsResponse
	if err := c.do(ctx, "get_custom_actions", s, http.MethodPost, revisionPath(s, e, rev.ID)+"/actions", body, &resp); err != nil {
		var reqErr *RequestFailedError
		if errors.As(err, &reqErr) {
			extLogger.Info().Str("editable_id", string(e.ID)).Str("error", reqErr.Message).Msg("Ignoring custom actions failure")
		}
		return nil
	}
	return resp.Actions
}

func (c *Client) HandleCustomAction(ctx context.Context, s *model.EditingSettings, e *model.Editable, state model.EditableState, rev *model.Revision, actor model.UserID, action string) (*CustomActionResponse, error) {
	body := CustomActionRequest{
		Action:   action,
		Editable: NewEditablePayload(e, state),
		Revision: c.urls.RevisionPayload(e, rev),
		User:     actor,
	}

	var resp CustomActionResponse
	if err := c.do(ctx, "handle_custom_action", s, http.MethodPost, revisionPath(s, e, rev.ID)+"/action", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NotifyDeleteEditable(ctx context.Context, s *model.EditingSettings, e *model.Editable) error {
	return c.do(ctx, "notify_delete_editable", s, http.MethodDelete, editablePath(s, e), nil, nil)
}

// Describe formats err for users, preferring the service's own message.
func Describe(err error) string {
	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return fmt.Sprint(err)
}
