package google

import (
	drive "google.golang.org/api/drive/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
)

// DefaultOAuthScopes are requested for every account.
//
// Full Drive access covers the write operations. The OpenID scopes back the
// user information lookup.
var DefaultOAuthScopes = []string{
	oauth2api.OpenIDScope,
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	drive.DriveScope,
}
