package export

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidImage is returned when an image payload is not valid base64.
var ErrInvalidImage = errors.New("invalid image data")

// Image decodes a base64 image blob, optionally wrapped in a data URL
// ("data:image/jpeg;base64,..."). The bytes are returned verbatim for
// saving as a .jpg.
func Image(encoded string) ([]byte, error) {
	payload := strings.TrimSpace(encoded)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64", ErrInvalidImage)
		}
		payload = payload[comma+1:]
	}
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	return data, nil
}

// ImageName returns name with a .jpg extension.
func ImageName(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".jpg")
	if name == "" {
		name = "image"
	}
	return name + ".jpg"
}
