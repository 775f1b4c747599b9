package domain

// TokenPair is the access/refresh credential pair handed out at login.
// The access token authenticates individual requests; the refresh token is
// exchanged for a fresh access token without re-entering a password.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
