// Package media decodes audio assets and plays them against a sample sink.
package media

import (
	"bytes"
	"path"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	gowav "github.com/go-audio/wav"
)

var (
	// ErrUnsupportedFormat is returned for audio formats without a decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrDecode is returned when an asset cannot be decoded.
	ErrDecode = errors.New("failed to decode audio")
)

// Format names.
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// Info describes a decoded asset.
type Info struct {
	Format     string
	Duration   time.Duration
	SampleRate int
	Channels   int
}

// DetectFormat picks a decoder from the content type, falling back to the file extension.
func DetectFormat(contentType, name string) (string, error) {
	switch strings.ToLower(contentType) {
	case "audio/mpeg", "audio/mp3", "audio/mpeg3":
		return FormatMP3, nil
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return FormatWAV, nil
	}

	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return FormatMP3, nil
	case ".wav":
		return FormatWAV, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "content type %q name %q", contentType, name)
}

// Probe reads the duration and layout of an asset without playing it.
func Probe(data []byte, contentType, name string) (Info, error) {
	format, err := DetectFormat(contentType, name)
	if err != nil {
		return Info{}, err
	}

	if format == FormatWAV {
		d := gowav.NewDecoder(bytes.NewReader(data))
		if !d.IsValidFile() {
			return Info{}, errors.Wrapf(ErrDecode, "%s: invalid wav", name)
		}
		dur, err := d.Duration()
		if err != nil {
			return Info{}, errors.Mark(errors.Wrapf(err, "%s: wav duration", name), ErrDecode)
		}
		return Info{
			Format:     FormatWAV,
			Duration:   dur,
			SampleRate: int(d.SampleRate),
			Channels:   int(d.NumChans),
		}, nil
	}

	s, f, err := decode(format, data)
	if err != nil {
		return Info{}, errors.Wrapf(err, "%s", name)
	}
	defer s.Close()
	return Info{
		Format:     format,
		Duration:   f.SampleRate.D(s.Len()),
		SampleRate: int(f.SampleRate),
		Channels:   f.NumChannels,
	}, nil
}

// decode opens a seekable streamer over an in-memory asset.
func decode(format string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := readSeekNopCloser{bytes.NewReader(data)}

	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	switch format {
	case FormatMP3:
		s, f, err = mp3.Decode(r)
	case FormatWAV:
		s, f, err = wav.Decode(r)
	default:
		return nil, beep.Format{}, errors.Wrapf(ErrUnsupportedFormat, "%s", format)
	}
	if err != nil {
		return nil, beep.Format{}, errors.Mark(errors.Wrapf(err, "decode %s", format), ErrDecode)
	}
	return s, f, nil
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }
