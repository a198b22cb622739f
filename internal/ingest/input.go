package ingest

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	ImageMIMEType = "image/jpeg"
	AudioMIMEType = "audio/webm"
)

// Input is what the capture form sends. Image and audio are base64 strings,
// optionally prefixed with a data URL header.
type Input struct {
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"imageBase64,omitempty"`
	AudioBase64 string `json:"audioBase64,omitempty"`
}

// IsEmpty reports whether no usable input was provided.
func (in Input) IsEmpty() bool {
	return strings.TrimSpace(in.Text) == "" &&
		strings.TrimSpace(in.ImageBase64) == "" &&
		strings.TrimSpace(in.AudioBase64) == ""
}

// StripDataURL drops a "data:<mime>;base64," header if present.
func StripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

func decodeMedia(field, raw string, maxBytes int64) ([]byte, error) {
	payload := StripDataURL(raw)
	if payload == "" {
		return nil, nil
	}
	if maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, fmt.Errorf("%s exceeds %d bytes", field, maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some recorders emit unpadded base64
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%s is not valid base64", field)
		}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", field, maxBytes)
	}
	return data, nil
}
