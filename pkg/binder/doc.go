// Package binder decodes HTTP requests into tagged structs.
//
// Each binder is a Func. Bind runs several of them against the same target so
// a handler can take path, query and body values in one struct:
//
//	type attachRequest struct {
//		ID      string  `path:"id"`
//		Scope   string  `json:"scope"`
//		OwnerID *string `json:"owner_id"`
//	}
//
//	var req attachRequest
//	err := binder.Bind(r, &req, binder.Path(chi.URLParam), binder.JSON(binder.DefaultMaxJSONSize))
//
// Supported tags are `json` (JSON body), `form` and `file` (urlencoded or
// multipart body), `query` and `path`. Scalar fields accept string, signed and
// unsigned integers, floats and bools; pointers mark optional values and
// slices take repeated or comma-separated values.
//
// All failures wrap one of the package sentinels so callers can map them to a
// 400 response with errors.Is.
package binder
