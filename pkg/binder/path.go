package binder

import "net/http"

// Path returns a binder for router path parameters. Only fields carrying a
// `path` tag are considered. extractor is usually chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) Func {
	return func(r *http.Request, v any) error {
		rv, err := structValue(v, ErrInvalidPath)
		if err != nil {
			return err
		}
		rt := rv.Type()
		values := make(map[string][]string)
		for i := range rt.NumField() {
			name := rt.Field(i).Tag.Get("path")
			if name == "" || name == "-" {
				continue
			}
			if val := extractor(r, name); val != "" {
				values[name] = []string{val}
			}
		}
		if len(values) == 0 {
			return nil
		}
		return bindToStruct(v, "path", values, ErrInvalidPath)
	}
}
