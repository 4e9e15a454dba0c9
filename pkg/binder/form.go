package binder

import (
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/assetkit/pkg/file"
)

// DefaultMaxMemory is the multipart memory threshold before parts spill to disk (10 MiB).
const DefaultMaxMemory = 10 << 20

var fileHeaderType = reflect.TypeOf((*multipart.FileHeader)(nil))

// Form returns a binder for application/x-www-form-urlencoded and
// multipart/form-data bodies. `form` fields take values and `file` fields take
// *multipart.FileHeader or []*multipart.FileHeader. Uploaded filenames are
// reduced to their base name.
func Form(maxMemory int64) Func {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}
	return func(r *http.Request, v any) error {
		mt, err := mediaType(r, "application/x-www-form-urlencoded or multipart/form-data")
		if err != nil {
			return err
		}

		var (
			values map[string][]string
			files  map[string][]*multipart.FileHeader
		)
		switch mt {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidForm, err)
			}
			values = r.PostForm
		case "multipart/form-data":
			if _, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || params["boundary"] == "" {
				return fmt.Errorf("%w: missing multipart boundary", ErrInvalidForm)
			}
			if err := r.ParseMultipartForm(maxMemory); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidForm, err)
			}
			values = r.MultipartForm.Value
			files = r.MultipartForm.File
		default:
			return fmt.Errorf("%w: got %s", ErrUnsupportedMediaType, mt)
		}

		if err := bindToStruct(v, "form", values, ErrInvalidForm); err != nil {
			return err
		}
		return bindFiles(v, files)
	}
}

func bindFiles(v any, files map[string][]*multipart.FileHeader) error {
	rv, err := structValue(v, ErrInvalidForm)
	if err != nil {
		return err
	}
	rt := rv.Type()
	for i := range rv.NumField() {
		field, sf := rv.Field(i), rt.Field(i)
		name := sf.Tag.Get("file")
		if name == "" || name == "-" || !field.CanSet() {
			continue
		}
		headers := files[name]
		if len(headers) == 0 {
			continue
		}
		for _, fh := range headers {
			fh.Filename = file.SanitizeFilename(fh.Filename)
		}

		switch {
		case sf.Type == fileHeaderType:
			field.Set(reflect.ValueOf(headers[0]))
		case sf.Type.Kind() == reflect.Slice && sf.Type.Elem() == fileHeaderType:
			field.Set(reflect.ValueOf(headers))
		default:
			return fmt.Errorf("%w: field %s: unsupported file field type %s", ErrInvalidForm, sf.Name, sf.Type)
		}
	}
	return nil
}
