package trac

import (
	"net/http"

	"github.com/icholy/digest"
)

// Credentials authenticate against the Trac XML-RPC endpoint.
// A non-empty Realm selects HTTP digest authentication; otherwise basic
// authentication is used when a username is set.
type Credentials struct {
	Username string
	Password string
	Realm    string
}

func newTransport(creds Credentials, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if creds.Realm != "" {
		return &digest.Transport{
			Username:  creds.Username,
			Password:  creds.Password,
			Transport: base,
		}
	}
	if creds.Username == "" {
		return base
	}
	return &basicAuthTransport{
		username: creds.Username,
		password: creds.Password,
		base:     base,
	}
}

// basicAuthTransport adds HTTP basic credentials to every request
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(clone)
}
