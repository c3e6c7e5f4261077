package api

import (
	"context"
	"encoding/base64"
)

// SetCredentials stores username and the Basic-Auth token for
// username:password in the session and returns the token. The
// credentials are not checked, use ValidateCredentials for that. The
// previous token is restored if the username can not be stored.
func (c *Client) SetCredentials(username, password string) (string, error) {
	prev := c.store.Credentials()
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	if err := c.store.SetCredentials(token); err != nil {
		return "", err
	}
	if err := c.store.SetUserName(username); err != nil {
		if rerr := c.store.SetCredentials(prev); rerr != nil {
			log.Warnf("restoring previous credentials: %s", rerr)
		}
		return "", err
	}
	return token, nil
}

func (c *Client) GetCredentials() string {
	return c.store.Credentials()
}

func (c *Client) ClearCredentials() error {
	return c.store.SetCredentials("")
}

// GetAuthorization returns the value for the Authorization header. Without
// credentials this is a bare "Basic " and the server will reject the
// request.
func (c *Client) GetAuthorization() string {
	return "Basic " + c.store.Credentials()
}

// ValidateCredentials requests the details of the authenticated user and
// stores the user id in the session. It returns false if the response
// contains no user.
func (c *Client) ValidateCredentials(ctx context.Context) (bool, error) {
	details, err := c.GetUserDetails(ctx)
	if err != nil {
		return false, err
	}
	user := details.Path("osm", "user")
	if user == nil {
		return false, nil
	}
	if err := c.store.SetUserID(user.Attr("id")); err != nil {
		return false, err
	}
	return true, nil
}

// SetOauth routes all authenticated requests through handle. Basic-Auth
// is used again after SetOauth(nil).
func (c *Client) SetOauth(handle OAuthHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.oauth = handle
	if handle != nil {
		c.transport, c.transportName = &oauthTransport{handle: handle}, "oauth"
	} else {
		c.transport, c.transportName = c.authTransport(), "basic"
	}
}

func (c *Client) GetOauth() OAuthHandle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.oauth
}
