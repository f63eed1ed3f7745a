package urlutil

import (
	"net/url"
)

// BuildCallbackURL merges params into the query string of the frontend
// callback URL. Existing query parameters are kept unless params
// overrides them.
// Returns a URL like: {callbackURL}?token={token}&user={json}
func BuildCallbackURL(callbackURL string, params url.Values) (string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
