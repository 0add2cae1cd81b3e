package domain

import "net/http"

const authorizationHeader = "Authorization"

// RequestContext carries the outbound request authorization. It is threaded
// explicitly into every API call instead of living in a shared header map, and
// is replaced as a whole on login and logout.
type RequestContext struct {
	token string
}

// NewRequestContext returns a RequestContext that authorizes with token.
// An empty token yields an unauthenticated context.
func NewRequestContext(token string) RequestContext {
	return RequestContext{token: token}
}

func (rc RequestContext) Authenticated() bool {
	return rc.token != ""
}

// Authorization returns the header value, or "" when unauthenticated.
func (rc RequestContext) Authorization() string {
	if rc.token == "" {
		return ""
	}
	return "Bearer " + rc.token
}

// Apply sets or strips the Authorization header on h.
func (rc RequestContext) Apply(h http.Header) {
	if v := rc.Authorization(); v != "" {
		h.Set(authorizationHeader, v)
		return
	}
	h.Del(authorizationHeader)
}

// Headers returns a fresh header set containing only the authorization entry, if any.
func (rc RequestContext) Headers() http.Header {
	h := make(http.Header)
	rc.Apply(h)
	return h
}
