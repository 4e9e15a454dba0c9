package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// MediaID records a media record identifier under the key "media_id".
// If id is nil, it returns an empty Attr.
func MediaID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("media_id", id)
}

// MediaPath records a storage path under the key "path".
func MediaPath(path string) slog.Attr {
	return slog.String("path", path)
}

// Scope records the owning collection under the key "scope".
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Variant groups label, width and format of an image variant under "variant".
func Variant(label string, width int, format string) slog.Attr {
	return Group("variant",
		slog.String("label", label),
		slog.Int("width", width),
		slog.String("format", format),
	)
}

// RequestID records the request identifier under the key "request_id".
// If id is nil, it returns an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
