package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AuthClient talks to the account service. Login yields the session cookies
// the account service set; Profile replays them to probe the session.
type AuthClient struct {
	LoginURL   string
	ProfileURL string
	HTTP       *http.Client
}

func NewAuthClient(loginURL, profileURL string, client *http.Client) *AuthClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &AuthClient{LoginURL: loginURL, ProfileURL: profileURL, HTTP: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs the customer in and returns the cookies to hand to the browser.
func (c *AuthClient) Login(ctx context.Context, email, password string) ([]*http.Cookie, error) {
	b, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.LoginURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: ErrorMessage(resp.StatusCode, resp.Status, body)}
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil, fmt.Errorf("login response set no session cookie")
	}
	return cookies, nil
}

// Profile reports whether cookies identify an authenticated session: 200 is
// true, 401 is false, anything else is an error.
func (c *AuthClient) Profile(ctx context.Context, cookies []*http.Cookie) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ProfileURL, nil)
	if err != nil {
		return false, err
	}
	for _, ck := range cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	default:
		return false, fmt.Errorf("profile probe: %s", resp.Status)
	}
}
