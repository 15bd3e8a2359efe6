package google

import (
	"context"
	"fmt"

	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo describes the Google user behind an account
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verifiedEmail"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
	Domain        string `json:"hostedDomain,omitempty"`
}

// GetUserInfo returns the profile of the user that authorized the account
func GetUserInfo(ctx context.Context, account string, opts ...option.ClientOption) (*UserInfo, error) {
	if len(opts) == 0 {
		client, err := GetHTTPClientForAccount(ctx, account)
		if err != nil {
			return nil, err
		}
		opts = []option.ClientOption{option.WithHTTPClient(client)}
	}

	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	u := &UserInfo{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
		Domain:  info.Hd,
	}
	if info.VerifiedEmail != nil {
		u.VerifiedEmail = *info.VerifiedEmail
	}
	return u, nil
}
