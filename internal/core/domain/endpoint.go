package domain

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes one backend call: a stable name, an HTTP method and a
// path template. Placeholders are written as {name} and filled in order.
type Endpoint struct {
	Name   string
	Method string
	Path   string
}

// Expand fills the path placeholders with args, path-escaping each one.
func (e Endpoint) Expand(args ...string) (string, error) {
	var b strings.Builder
	rest := e.Path
	n := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", ErrMissingPathParam.WithDetails(fmt.Sprintf("unterminated placeholder in %q", e.Path))
		}
		if n >= len(args) {
			return "", ErrMissingPathParam.WithDetails(fmt.Sprintf("%s needs %s", e.Name, rest[open:open+end+1]))
		}
		if args[n] == "" {
			return "", ErrMissingPathParam.WithDetails(fmt.Sprintf("%s: empty %s", e.Name, rest[open:open+end+1]))
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(args[n]))
		n++
		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

// String returns "METHOD /path".
func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// Backend endpoints.
var (
	EndpointRegister         = Endpoint{Name: "register", Method: http.MethodPost, Path: "/auth/register"}
	EndpointEmailLogin       = Endpoint{Name: "emailLogin", Method: http.MethodPost, Path: "/auth/email-login"}
	EndpointRequestOTP       = Endpoint{Name: "requestOtp", Method: http.MethodPost, Path: "/auth/request-otp"}
	EndpointVerifyOTP        = Endpoint{Name: "verifyOtp", Method: http.MethodPost, Path: "/auth/verify-otp"}
	EndpointLoginWithIDToken = Endpoint{Name: "loginWithIdToken", Method: http.MethodPost, Path: "/auth/login"}

	EndpointCreateMatch   = Endpoint{Name: "createMatch", Method: http.MethodPost, Path: "/matches"}
	EndpointListMatches   = Endpoint{Name: "listMatches", Method: http.MethodGet, Path: "/matches"}
	EndpointDeleteMatch   = Endpoint{Name: "deleteMatch", Method: http.MethodDelete, Path: "/matches/{id}"}
	EndpointGetMatchScore = Endpoint{Name: "getMatchScore", Method: http.MethodGet, Path: "/matches/{id}/score"}
	EndpointToss          = Endpoint{Name: "toss", Method: http.MethodPost, Path: "/matches/{id}/toss"}

	EndpointSendInvite    = Endpoint{Name: "sendInvite", Method: http.MethodPost, Path: "/matches/{id}/invite"}
	EndpointListInvites   = Endpoint{Name: "listInvites", Method: http.MethodGet, Path: "/invites"}
	EndpointRespondInvite = Endpoint{Name: "respondInvite", Method: http.MethodPost, Path: "/invites/{id}/respond"}
)

// Endpoints lists every backend endpoint.
var Endpoints = []Endpoint{
	EndpointRegister, EndpointEmailLogin, EndpointRequestOTP, EndpointVerifyOTP, EndpointLoginWithIDToken,
	EndpointCreateMatch, EndpointListMatches, EndpointDeleteMatch, EndpointGetMatchScore, EndpointToss,
	EndpointSendInvite, EndpointListInvites, EndpointRespondInvite,
}
