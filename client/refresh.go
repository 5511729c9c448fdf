package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const refreshGroupKey = "refresh"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func (c *Client) refreshAndRetry(ctx context.Context, req *Request, cause error) (*Response, error) {
	refreshToken, err := c.store.RefreshToken()
	if err != nil {
		c.logger.Warn().Err(err).Msg("could not read refresh token")
	}
	if refreshToken == "" {
		c.terminate(cause)
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, cause)
	}

	// Only a token taken from the store can have been superseded by another
	// refresh; a caller supplied credential always triggers a refresh.
	staleToken := ""
	if req.tokenFromStore {
		staleToken = req.sentToken
	}
	access, err := c.refresh(ctx, refreshToken, staleToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh: %w; original request: %w", ErrSessionExpired, err, cause)
	}

	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set("Authorization", "Bearer "+access)
	return c.Do(ctx, req)
}

// refresh obtains a new access token. Callers that overlap share one
// backend call. If staleToken is set and the stored token already differs
// from it, some other request refreshed in the meantime and its token is
// reused.
func (c *Client) refresh(ctx context.Context, refreshToken, staleToken string) (string, error) {
	v, err, shared := c.refreshGroup.Do(refreshGroupKey, func() (any, error) {
		if current := c.store.AccessToken(); staleToken != "" && current != "" && current != staleToken {
			return current, nil
		}
		return c.doRefresh(context.WithoutCancel(ctx), refreshToken)
	})
	if shared {
		c.logger.Debug().Msg("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	req, err := NewRequest(http.MethodPost, RefreshPath, refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}

	var pair tokenPair
	resp, err := c.send(ctx, req)
	if err == nil && !resp.ok() {
		err = newStatusError(req, resp)
	}
	if err == nil {
		err = resp.Decode(&pair)
	}
	if err == nil && pair.Access == "" {
		err = errors.New("refresh response is missing the access token")
	}
	if err == nil {
		err = c.store.SetAccessToken(pair.Access)
	}
	if err == nil && pair.Refresh != "" {
		err = c.store.SetRefreshToken(pair.Refresh)
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("token refresh failed")
		c.terminate(err)
		return "", err
	}

	c.logger.Debug().Bool("rotated", pair.Refresh != "").Msg("access token refreshed")
	return pair.Access, nil
}

// terminate clears the session and notifies the SessionExpired handlers.
func (c *Client) terminate(cause error) {
	if err := c.store.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear session")
	}
	c.logger.Info().Err(cause).Msg("session expired")

	c.handlersLock.RLock()
	handlers := append([]SessionExpiredHandler(nil), c.onSessionExpired...)
	c.handlersLock.RUnlock()
	for _, h := range handlers {
		h(cause)
	}
}
