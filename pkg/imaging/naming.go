package imaging

import (
	"path"
	"strconv"
	"strings"
)

// Format is an output encoding of a variant.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
)

// allFormats is the naming order used by Paths.
var allFormats = []Format{FormatJPEG, FormatWebP, FormatAVIF}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MIME returns the content type of the format.
func (f Format) MIME() string {
	return "image/" + string(f)
}

func (f Format) String() string {
	return string(f)
}

// VariantPath derives the storage path of a variant from the original's path:
// <dir>/<stem>-<label>-<width>w.<ext>. The result depends only on its arguments.
func VariantPath(originalPath, label string, width int, f Format) string {
	dir, base := path.Split(originalPath)
	stem := strings.TrimSuffix(base, path.Ext(base))

	var b strings.Builder
	b.Grow(len(dir) + len(stem) + len(label) + 16)
	b.WriteString(dir)
	b.WriteString(stem)
	b.WriteByte('-')
	b.WriteString(label)
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(width))
	b.WriteString("w.")
	b.WriteString(f.Ext())
	return b.String()
}

// Paths returns every variant path the matrix can derive from originalPath,
// AVIF included whether or not this process encodes it.
func (e *Encoder) Paths(originalPath string) []string {
	if originalPath == "" {
		return nil
	}
	paths := make([]string, 0, len(e.cfg.Variants)*len(allFormats))
	for _, d := range e.cfg.Variants {
		for _, f := range allFormats {
			paths = append(paths, VariantPath(originalPath, d.Label, d.Width, f))
		}
	}
	return paths
}

// DefaultPath returns the JPEG path of the default variant, used as thumb_path.
func (e *Encoder) DefaultPath(originalPath string) string {
	d, _ := e.cfg.Descriptor(e.cfg.DefaultLabel)
	return VariantPath(originalPath, d.Label, d.Width, FormatJPEG)
}
