package domain

import (
	"bytes"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

var (
	errNotImageDataURL = errors.New("not an image data URL")
	// ErrNoSuchCamera is returned by CameraSwitcher.SwitchCamera for an unknown index.
	ErrNoSuchCamera = errors.New("no such camera")
	// ErrFramesNotAccepted is returned when frames are pushed, but come from a local camera.
	ErrFramesNotAccepted = errors.New("frames come from a local camera")
)

var dataURLPrefixRegexp = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)

// Frame one still snapshot from the capture device, used for exactly one analysis request.
type Frame struct {
	Data     []byte
	MIMEType string
}

// FrameSource produces a single still image on request.
type FrameSource interface {
	// CaptureFrame takes one best-effort snapshot of the currently selected camera. Returns false if the device hasn't
	// produced a usable frame yet (for example, it's still initializing): that's "nothing to see", not an error.
	CaptureFrame() (Frame, bool)
}

// CameraSwitcher is implemented by frame sources which know about several physical cameras.
type CameraSwitcher interface {
	// Cameras lists the known devices; the index in the list is what SwitchCamera expects.
	Cameras() []string
	// SwitchCamera selects the device used by the next capture. Fire-and-forget: there's no confirmation that the
	// device actually works.
	SwitchCamera(index int) error
	ActiveCamera() int
}

// Image is the image as sent over the wire: base64 without any data URL prefix, plus its MIME type.
type Image struct {
	MIMEType string
	Base64   string
}

// DataURL restores the "data:image/...;base64," form some providers expect.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Base64
}

// NewImage encodes the frame for sending. Frames which were handed over as data URL text (e.g. by a browser camera)
// have the prefix stripped.
func NewImage(frame Frame) Image {
	mimeType := frame.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	if bytes.HasPrefix(frame.Data, []byte("data:")) {
		encoded := string(frame.Data)
		match := dataURLPrefixRegexp.FindStringSubmatch(encoded)
		if match != nil {
			return Image{
				MIMEType: mimeTypeFromSubtype(match[1]),
				Base64:   encoded[len(match[0]):],
			}
		}
	}
	return Image{
		MIMEType: mimeType,
		Base64:   base64.StdEncoding.EncodeToString(frame.Data),
	}
}

// StripDataURLPrefix removes the "data:image/(png|jpeg|jpg);base64," prefix if present.
func StripDataURLPrefix(encoded string) string {
	return dataURLPrefixRegexp.ReplaceAllString(encoded, "")
}

// ParseDataURL decodes an image data URL into a frame.
func ParseDataURL(dataURL string) (Frame, error) {
	dataURL = strings.TrimSpace(dataURL)
	match := dataURLPrefixRegexp.FindStringSubmatch(dataURL)
	if match == nil {
		return Frame{}, errNotImageDataURL
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[len(match[0]):])
	if err != nil {
		return Frame{}, err
	}
	if len(data) == 0 {
		return Frame{}, errNotImageDataURL
	}
	return Frame{
		Data:     data,
		MIMEType: mimeTypeFromSubtype(match[1]),
	}, nil
}

func mimeTypeFromSubtype(subtype string) string {
	if subtype == "jpg" {
		subtype = "jpeg"
	}
	return "image/" + subtype
}
