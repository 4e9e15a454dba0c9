// Package httpapi exposes the media pipeline and the HTML sanitizer over HTTP.
//
// Routes:
//
//	POST   /media              multipart upload (file, scope, owner_id, position)
//	GET    /media              list by scope and owner_id (omitted: rows without an owner)
//	GET    /media/{id}         one record
//	PATCH  /media/{id}         change position
//	DELETE /media/{id}         delete record, files go once unreferenced
//	POST   /media/{id}/attach  share the files of {id} with another owner
//	POST   /sanitize           clean untrusted HTML
//	GET    /health/live        liveness probe
//	GET    /health/ready       readiness probe
//
// Every JSON response uses the same envelope:
//
//	{"data": ..., "meta": {...}, "error": {"code": "...", "message": "...", "details": {...}}}
//
// Domain errors are mapped to status codes in one place (statusFor), so handlers
// just return the error they got.
package httpapi
