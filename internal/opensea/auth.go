package opensea

import (
	"context"
	"fmt"
	"strings"
)

type challengeResp struct {
	Auth struct {
		LoginMessage string `json:"loginMessage"`
	} `json:"auth"`
}

// session runs the login flow and returns the cookie header value that must
// accompany privileged calls: request a challenge message for the wallet's
// address, personal-sign it, and exchange the signature (plus the process
// device id) for session cookies.
//
// Sessions are not cached; every privileged operation authenticates afresh,
// and a failure aborts only that operation.
func (c *Client) session(ctx context.Context) (string, error) {
	if c.signer == nil {
		return "", fmt.Errorf("no signing wallet configured")
	}
	address := strings.ToLower(c.signer.Address().Hex())

	var challenge challengeResp
	if _, err := c.postGraphQL(ctx, challengeQueryID, challengeQuery, challengeQuerySig, map[string]any{
		"address": address,
	}, "", &challenge); err != nil {
		return "", fmt.Errorf("login challenge: %w", err)
	}
	message := challenge.Auth.LoginMessage
	if message == "" {
		return "", fmt.Errorf("login challenge: empty message")
	}

	signature, err := c.signer.SignMessage(message)
	if err != nil {
		return "", fmt.Errorf("sign login message: %w", err)
	}

	header, err := c.postGraphQL(ctx, loginMutationID, loginMutation, loginMutationSig, map[string]any{
		"address":   address,
		"message":   message,
		"deviceId":  c.deviceID,
		"signature": signature,
		"chain":     "ETHEREUM",
	}, "", nil)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	cookies := header.Values("Set-Cookie")
	if len(cookies) == 0 {
		return "", fmt.Errorf("login: no session cookies in response")
	}
	parts := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		// Keep only the name=value pair; attributes are not replayed.
		if i := strings.IndexByte(cookie, ';'); i >= 0 {
			cookie = cookie[:i]
		}
		parts = append(parts, strings.TrimSpace(cookie))
	}
	return strings.Join(parts, "; "), nil
}
