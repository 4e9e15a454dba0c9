package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	"golang.org/x/image/draw"
)

// Codec writes img to w in one output format at the given quality.
type Codec func(w io.Writer, img image.Image, quality int) error

func defaultCodecs() map[Format]Codec {
	return map[Format]Codec{
		FormatJPEG: encodeJPEG,
		FormatWebP: encodeWebP,
		FormatAVIF: encodeAVIF,
	}
}

func encodeJPEG(w io.Writer, img image.Image, quality int) error {
	return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: quality})
}

func encodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, webp.Options{Quality: quality, Method: 4})
}

func encodeAVIF(w io.Writer, img image.Image, quality int) error {
	return avif.Encode(w, img, avif.Options{
		Quality:           quality,
		QualityAlpha:      quality,
		Speed:             8,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	})
}

// safeEncode runs a codec and turns a panic inside it into an error.
func safeEncode(c Codec, w io.Writer, img image.Image, quality int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("codec panic: %v", r)
		}
	}()
	return c(w, img, quality)
}

// probe encodes a 1x1 image to check that the codec works in this process.
func probe(c Codec) error {
	if c == nil {
		return ErrCodecUnavailable
	}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	return safeEncode(c, io.Discard, img, 50)
}

// flatten composes images with an alpha channel onto white. JPEG has no alpha.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// resize scales img to width w keeping the aspect ratio. Callers never pass a
// width above the source width.
func resize(img image.Image, w int) image.Image {
	b := img.Bounds()
	if b.Dx() == w {
		return img
	}
	h := scaledHeight(b.Dx(), b.Dy(), w)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func scaledHeight(srcW, srcH, w int) int {
	h := (srcH*w + srcW/2) / srcW
	if h < 1 {
		h = 1
	}
	return h
}
