package httpapi

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/assetkit/pkg/binder"
	"github.com/dmitrymomot/assetkit/pkg/file"
	"github.com/dmitrymomot/assetkit/pkg/media"
)

// mediaView is a Media row with public URLs resolved.
type mediaView struct {
	*media.Media
	URL      string  `json:"url"`
	ThumbURL *string `json:"thumb_url"`
}

func (a *API) view(m *media.Media) mediaView {
	v := mediaView{Media: m, URL: a.media.URL(m.Path)}
	if m.ThumbPath != nil && *m.ThumbPath != "" {
		u := a.media.URL(*m.ThumbPath)
		v.ThumbURL = &u
	}
	return v
}

type uploadRequest struct {
	File     *multipart.FileHeader `file:"file"`
	Scope    string                `form:"scope"`
	OwnerID  string                `form:"owner_id"`
	Position int                   `form:"position"`
}

func (a *API) upload(r *http.Request) Response {
	var req uploadRequest
	err := binder.Bind(r, &req, binder.Form(binder.DefaultMaxMemory))
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	if err != nil {
		return a.fail(r, err)
	}
	if req.File == nil {
		return a.fail(r, ErrMissingFile)
	}

	if err := file.ValidateSize(req.File, a.maxUpload); err != nil {
		return a.fail(r, err)
	}
	data, err := file.ReadAll(req.File, a.maxUpload)
	if err != nil {
		return a.fail(r, err)
	}

	m, err := a.media.Ingest(r.Context(), media.Upload{
		Filename: req.File.Filename,
		Data:     data,
		Scope:    req.Scope,
		OwnerID:  optional(req.OwnerID),
		Position: req.Position,
	})
	if err != nil {
		return a.fail(r, err)
	}
	return JSON(a.view(m), WithStatus(http.StatusCreated))
}

type listRequest struct {
	Scope   string `query:"scope"`
	OwnerID string `query:"owner_id"`
}

func (a *API) list(r *http.Request) Response {
	var req listRequest
	if err := binder.Bind(r, &req, binder.Query()); err != nil {
		return a.fail(r, err)
	}
	if strings.TrimSpace(req.Scope) == "" {
		return a.fail(r, ErrMissingParams)
	}

	rows, err := a.media.List(r.Context(), req.Scope, req.OwnerID)
	if err != nil {
		return a.fail(r, err)
	}
	out := make([]mediaView, 0, len(rows))
	for _, m := range rows {
		out = append(out, a.view(m))
	}
	return JSON(out, WithMeta(map[string]any{"count": len(out)}))
}

type idRequest struct {
	ID string `path:"id"`
}

func (a *API) get(r *http.Request) Response {
	id, err := mediaID(r)
	if err != nil {
		return a.fail(r, err)
	}
	m, err := a.media.Get(r.Context(), id)
	if err != nil {
		return a.fail(r, err)
	}
	return JSON(a.view(m))
}

type positionRequest struct {
	Position *int `json:"position"`
}

func (a *API) setPosition(r *http.Request) Response {
	id, err := mediaID(r)
	if err != nil {
		return a.fail(r, err)
	}
	var req positionRequest
	if err := binder.Bind(r, &req, binder.JSON(binder.DefaultMaxJSONSize)); err != nil {
		return a.fail(r, err)
	}
	if req.Position == nil {
		return a.fail(r, ErrMissingPos)
	}

	m, err := a.media.SetPosition(r.Context(), id, *req.Position)
	if err != nil {
		return a.fail(r, err)
	}
	return JSON(a.view(m))
}

func (a *API) delete(r *http.Request) Response {
	id, err := mediaID(r)
	if err != nil {
		return a.fail(r, err)
	}
	if err := a.media.Delete(r.Context(), id); err != nil {
		return a.fail(r, err)
	}
	return NoContent()
}

type attachRequest struct {
	Scope   string  `json:"scope"`
	OwnerID *string `json:"owner_id"`
}

func (a *API) attach(r *http.Request) Response {
	id, err := mediaID(r)
	if err != nil {
		return a.fail(r, err)
	}
	var req attachRequest
	if err := binder.Bind(r, &req, binder.JSON(binder.DefaultMaxJSONSize)); err != nil {
		return a.fail(r, err)
	}

	m, err := a.media.Attach(r.Context(), id, req.Scope, req.OwnerID)
	if err != nil {
		return a.fail(r, err)
	}
	return JSON(a.view(m), WithStatus(http.StatusCreated))
}

func mediaID(r *http.Request) (uuid.UUID, error) {
	var req idRequest
	if err := binder.Bind(r, &req, binder.Path(chi.URLParam)); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidMedia, req.ID)
	}
	return id, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
