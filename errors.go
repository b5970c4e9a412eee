package main

import "net/http"

// apiErr is a request-scoped error with the HTTP status it maps to and a
// machine-stable message for the client. Store failures that are not apiErr
// surface as 500 "storage error".
type apiErr struct {
	Status  int
	Message string
}

func (e *apiErr) Error() string { return e.Message }

func errBadRequest(msg string) *apiErr { return &apiErr{http.StatusBadRequest, msg} }
func errNotFound(msg string) *apiErr   { return &apiErr{http.StatusNotFound, msg} }
func errConflict(msg string) *apiErr   { return &apiErr{http.StatusConflict, msg} }

// errDuplicateKey is returned by connection stores when the unique
// (partnerId, requesterEmail) index rejects an insert. The orchestrator maps
// it to 409, closing the check-then-act race at the storage layer.
var errDuplicateKey = errConflict("duplicate request")
