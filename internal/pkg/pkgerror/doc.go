// Package pkgerror defines the error taxonomy shared by stores, use cases
// and the HTTP edge.
//
// Sentinels such as ErrNotFound are matched with errors.Is inside the
// service. The Error type carries a client-safe message and a Code that the
// router turns into a status: invalid input 422, not found 404, busy 503,
// storage failure 500.
package pkgerror
