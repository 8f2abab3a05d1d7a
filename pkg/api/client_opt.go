package api

import (
	"net/http"
)

type oauth2Opt struct {
	token string
}

// OAuth2 sets the Authorization header as "<prefix> <token>", e.g. Bearer for
// a user credential or Bot for the bot credential.
func OAuth2(prefix, token string) *oauth2Opt {
	return &oauth2Opt{token: prefix + " " + token}
}

func (opt *oauth2Opt) Do(req *http.Request) {
	req.Header.Set("Authorization", opt.token)
}
