// Package pkgrouter is the HTTP edge of the service: an httprouter-backed
// router whose handlers return (payload, error), plus the shared middleware
// for recovery, correlation ids, request logging and body limits.
//
// Payloads are wrapped as {message, data, meta}; *pkgerror.Error values are
// rendered as {message} with the status code of their error code.
package pkgrouter
