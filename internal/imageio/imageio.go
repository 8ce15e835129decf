// Image loading, saving and in-memory coding through OpenCV
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	// Formats the OpenCV build may lack
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"image-stylizer/internal/ops/opencv"
	"image-stylizer/internal/raster"
)

// ErrUnsupportedFormat is returned for extensions outside the supported list
var ErrUnsupportedFormat = errors.New("unsupported image format")

// supportedFormats can be both read and written
var supportedFormats = map[string]string{
	".jpg":  "JPEG",
	".jpeg": "JPEG",
	".png":  "PNG",
	".tiff": "TIFF",
	".tif":  "TIFF",
	".bmp":  "BMP",
	".gif":  "GIF",
}

// decodeOnlyFormats are accepted as input only
var decodeOnlyFormats = map[string]string{
	".webp": "WebP",
}

// alphaFormats keep the fourth channel when encoding
var alphaFormats = map[string]bool{
	".png":  true,
	".tiff": true,
	".tif":  true,
}

// goFormats are coded by the Go image packages instead of OpenCV
var goFormats = map[string]bool{
	".gif":  true,
	".webp": true,
}

// Loader handles image file operations
type Loader struct {
	log logrus.FieldLogger
}

// New returns a loader logging to log
func New(log logrus.FieldLogger) *Loader {
	return &Loader{
		log: log,
	}
}

// Load reads an image file into an RGBA raster, keeping any alpha channel
func (l *Loader) Load(path string) (*raster.Image, error) {
	l.log.WithField("path", path).Debug("Loading image")

	ext := Extension(path)
	if !IsDecodable(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	var (
		img *raster.Image
		err error
	)
	if goFormats[ext] {
		var data []byte
		if data, err = os.ReadFile(path); err == nil {
			img, err = decodeGo(data)
		}
	} else {
		mat := gocv.IMRead(path, gocv.IMReadUnchanged)
		defer mat.Close()
		if mat.Empty() {
			return nil, fmt.Errorf("failed to load image: %s", path)
		}
		img, err = fromMat(mat)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	l.log.WithFields(logrus.Fields{
		"path":   path,
		"width":  img.Width,
		"height": img.Height,
	}).Info("Image loaded successfully")

	return img, nil
}

// Save writes an RGBA raster to path, picking the format from the extension
func (l *Loader) Save(img *raster.Image, path string) error {
	l.log.WithField("path", path).Debug("Saving image")

	ext := Extension(path)
	if _, ok := supportedFormats[ext]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if goFormats[ext] {
		data, err := Encode(img, ext)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to save image: %w", err)
		}
	} else {
		mat, err := toBGR(img, ext)
		if err != nil {
			return err
		}
		defer mat.Close()

		if !gocv.IMWrite(path, mat) {
			return fmt.Errorf("failed to save image: %s", path)
		}
	}

	l.log.WithFields(logrus.Fields{
		"path":   path,
		"width":  img.Width,
		"height": img.Height,
	}).Info("Image saved successfully")

	return nil
}

// Decode parses an encoded image held in memory. Data OpenCV cannot read
// falls back to the Go decoders, which cover GIF and WebP.
func Decode(data []byte) (*raster.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if !mat.Closed() {
		defer mat.Close()
		if err == nil && !mat.Empty() {
			return fromMat(mat)
		}
	}

	img, goErr := decodeGo(data)
	if goErr != nil {
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		return nil, fmt.Errorf("failed to decode image: %w", goErr)
	}
	return img, nil
}

// Encode serializes an RGBA raster in the format named by ext, e.g. ".png"
func Encode(img *raster.Image, ext string) ([]byte, error) {
	ext = strings.ToLower(ext)
	if _, ok := supportedFormats[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if ext == ".gif" {
		return encodeGIF(img)
	}

	mat, err := toBGR(img, ext)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.FileExt(ext), mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	// GetBytes aliases C memory released by Close
	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())
	return encoded, nil
}

// IsSupported reports whether path has an extension that can be written
func IsSupported(path string) bool {
	_, ok := supportedFormats[Extension(path)]
	return ok
}

// IsDecodable reports whether path has an extension that can be read
func IsDecodable(path string) bool {
	ext := Extension(path)
	if _, ok := decodeOnlyFormats[ext]; ok {
		return true
	}
	_, ok := supportedFormats[ext]
	return ok
}

// Extension returns the lower-case extension of path including the dot
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// SupportedFormats lists the format names accepted by Save
func SupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP", "GIF"}
}

// ContentType returns the MIME type for a supported extension
func ContentType(ext string) string {
	switch supportedFormats[strings.ToLower(ext)] {
	case "JPEG":
		return "image/jpeg"
	case "PNG":
		return "image/png"
	case "TIFF":
		return "image/tiff"
	case "BMP":
		return "image/bmp"
	case "GIF":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func decodeGo(data []byte) (*raster.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return raster.FromImage(src), nil
}

func encodeGIF(img *raster.Image) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img.ToImage(), nil); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fromMat converts a decoded 1, 3 or 4 channel matrix of 8 or 16 bit samples to RGBA
func fromMat(mat gocv.Mat) (*raster.Image, error) {
	src := mat
	if mat.ElemSize() == 2*mat.Channels() {
		narrow := gocv.NewMat()
		defer narrow.Close()
		if err := mat.ConvertToWithParams(&narrow, gocv.MatTypeCV8U, 1.0/257, 0); err != nil {
			return nil, err
		}
		src = narrow
	}

	var code gocv.ColorConversionCode
	switch src.Channels() {
	case 1:
		code = gocv.ColorGrayToRGBA
	case 3:
		code = gocv.ColorBGRToRGBA
	case 4:
		code = gocv.ColorBGRAToRGBA
	default:
		return nil, fmt.Errorf("cannot decode %d channel image", src.Channels())
	}

	rgba := gocv.NewMat()
	defer rgba.Close()

	if err := gocv.CvtColor(src, &rgba, code); err != nil {
		return nil, err
	}
	return opencv.RasterFromMat(rgba, raster.RGBA)
}

func toBGR(img *raster.Image, ext string) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}
	if img.Layout != raster.RGBA {
		return gocv.NewMat(), fmt.Errorf("cannot encode %s image", img.Layout)
	}

	src, err := opencv.MatFromRaster(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer src.Close()

	code := gocv.ColorRGBAToBGR
	if alphaFormats[ext] {
		code = gocv.ColorRGBAToBGRA
	}

	dst := gocv.NewMat()
	if err := gocv.CvtColor(src, &dst, code); err != nil {
		dst.Close()
		return gocv.NewMat(), err
	}
	return dst, nil
}
