package client

import (
	"context"
	"encoding/json"
	"net/http"

	v1 "dairyflow/pkg/api/v1"
	"dairyflow/pkg/logger"

	"go.uber.org/zap"
)

// refresh exchanges refreshToken for a new access token and persists it.
// With coalescing enabled, concurrent callers holding the same refresh token
// share the outcome of a single call. The shared call is detached from any
// one caller's cancellation; each caller stops waiting when its own ctx ends.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if !c.coalesce {
		return c.doRefresh(ctx, refreshToken)
	}
	ch := c.refreshGroup.DoChan(refreshToken, func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx), refreshToken)
	})
	select {
	case <-ctx.Done():
		return "", newNetworkError(KindNetwork, ctx.Err())
	case res := <-ch:
		if res.Shared {
			logger.Debug("joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// doRefresh posts to the refresh endpoint directly on the transport: the call
// is unauthenticated and never re-enters the retry stage.
func (c *Client) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(v1.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", &Error{Kind: KindRefreshFailed, Message: fallbackMessage, Err: err}
	}

	resp, err := c.transport(ctx, &Request{
		Method: http.MethodPost,
		Path:   c.refreshPath,
		Body:   body,
		Header: make(http.Header),
	})
	if err != nil {
		c.observer.RecordRefresh(false)
		return "", newNetworkError(KindRefreshFailed, err)
	}
	if !isSuccess(resp.StatusCode) {
		c.observer.RecordRefresh(false)
		return "", newStatusError(KindRefreshFailed, resp)
	}

	var out v1.RefreshResponse
	if err := json.Unmarshal(v1.Unwrap(resp.Body), &out); err != nil || out.AccessToken == "" {
		c.observer.RecordRefresh(false)
		return "", &Error{
			Kind:    KindRefreshFailed,
			Message: "Refresh response did not contain an access token",
			Status:  resp.StatusCode,
			Data:    rawData(resp.Body),
			Err:     err,
		}
	}

	if err := c.store.SaveToken(ctx, out.AccessToken); err != nil {
		c.observer.RecordRefresh(false)
		return "", &Error{Kind: KindRefreshFailed, Message: "Failed to persist refreshed token", Err: err}
	}
	if out.RefreshToken != "" && out.RefreshToken != refreshToken {
		if err := c.store.SaveRefreshToken(ctx, out.RefreshToken); err != nil {
			logger.Warn("failed to persist rotated refresh token", zap.Error(err))
		}
	}

	c.observer.RecordRefresh(true)
	logger.Debug("access token refreshed")
	return out.AccessToken, nil
}
