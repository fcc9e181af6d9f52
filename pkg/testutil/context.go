package testutil

import (
	"net/http"
	"time"

	"didweb-anoncreds/pkg/requestcontext"
)

// WithSubject marks the request as authenticated for issuerDID, as the auth
// middleware would.
func WithSubject(req *http.Request, issuerDID string) *http.Request {
	return req.WithContext(requestcontext.WithSubject(req.Context(), issuerDID))
}

// WithTime pins the request clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
