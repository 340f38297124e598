package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	mixerrors "github.com/jscyril/automix/pkg/errors"
)

// SupportedFormats returns list of supported audio formats
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks if a file format is supported
func IsSupported(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio file based on its extension
func DecodeAudio(r io.ReadSeekCloser, filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", mixerrors.ErrInvalidFormat, ext)
	}
}

// DecodeToBuffer decodes a whole file into an in-memory buffer. The mix
// engine schedules against fixed buffers, so tracks are decoded up front
// rather than streamed.
func DecodeToBuffer(filePath string) (*beep.Buffer, time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}

	streamer, format, err := DecodeAudio(file, filePath)
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("decode %s: %w", filePath, err)
	}

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	streamer.Close()

	return buf, format.SampleRate.D(buf.Len()), nil
}
