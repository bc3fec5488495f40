package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dairyflow/pkg/constraints"
	"dairyflow/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is one logical call. It lives for a single Do and carries its own
// retry marker, so concurrent calls never observe each other's recovery.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Query  url.Values
	Header http.Header

	requestID string
	bearer    string
	retried   bool
}

// Doer sends a request and returns the response for any status. A non-nil
// error from the transport means no response was received.
type Doer func(ctx context.Context, req *Request) (*Response, error)

type Middleware func(next Doer) Doer

// chain wraps final so that mws[0] is the outermost stage.
func chain(final Doer, mws ...Middleware) Doer {
	for i := len(mws) - 1; i >= 0; i-- {
		final = mws[i](final)
	}
	return final
}

func (c *Client) transport(ctx context.Context, req *Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range c.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range req.Header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if req.requestID == "" {
		req.requestID = uuid.NewString()
	}
	httpReq.Header.Set(constraints.HeaderRequestID, req.requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

func (c *Client) attachAuth(next Doer) Doer {
	return func(ctx context.Context, req *Request) (*Response, error) {
		token := req.bearer
		if token == "" {
			stored, err := c.store.GetToken(ctx)
			if err != nil {
				logger.Warn("failed to read access token, sending unauthenticated",
					zap.String("path", req.Path), zap.Error(err))
			}
			token = stored
		}
		if token != "" {
			req.Header.Set(constraints.HeaderAuthorization, constraints.BearerPrefix+token)
		}
		return next(ctx, req)
	}
}

func (c *Client) observe(next Doer) Doer {
	return func(ctx context.Context, req *Request) (*Response, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		cost := time.Since(start)

		status := "network_error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		c.observer.ObserveRequest(req.Method, status, cost)

		logger.Debug("api_request",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("status", status),
			zap.String("request_id", req.requestID),
			zap.Bool("retried", req.retried),
			zap.Duration("latency", cost),
		)
		return resp, err
	}
}

// authRetry recovers a 401 by refreshing the access token and resubmitting
// the request exactly once. The resubmitted response is returned as-is.
func (c *Client) authRetry(next Doer) Doer {
	return func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := next(ctx, req)
		if err != nil || resp.StatusCode != http.StatusUnauthorized || req.retried {
			return resp, err
		}

		refreshToken, err := c.store.GetRefreshToken(ctx)
		if err != nil {
			logger.Warn("failed to read refresh token", zap.Error(err))
		}
		if refreshToken == "" {
			return resp, nil
		}

		accessToken, err := c.refresh(ctx, refreshToken)
		if err != nil {
			// A caller giving up is not a rejected refresh token.
			if ctxErr := ctx.Err(); ctxErr != nil {
				logger.Debug("token refresh interrupted, session kept", zap.Error(ctxErr))
				return nil, newNetworkError(KindNetwork, ctxErr)
			}
			if cerr := c.store.ClearAll(ctx); cerr != nil {
				logger.Error("failed to clear session after refresh failure", zap.Error(cerr))
			}
			logger.Warn("token refresh failed, session cleared", zap.Error(err))
			return nil, err
		}

		req.retried = true
		req.bearer = accessToken
		req.requestID = ""
		return next(ctx, req)
	}
}

func (c *Client) normalizeError(next Doer) Doer {
	return func(ctx context.Context, req *Request) (*Response, error) {
		resp, err := next(ctx, req)
		if err != nil {
			if e, ok := AsError(err); ok {
				return nil, e
			}
			return nil, newNetworkError(KindNetwork, err)
		}
		if isSuccess(resp.StatusCode) {
			return resp, nil
		}
		return nil, newStatusError(KindServer, resp)
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
