package whispermic

import (
	"path/filepath"
	"strconv"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	wave "github.com/zenwerk/go-wave"
)

// Capture writes finished utterances as WAV files for debugging
// recognition quality.
type Capture struct {
	fs  afero.Fs
	dir string
}

// NewCapture creates a capture sink on the given filesystem.
func NewCapture(fs afero.Fs, dir string) (*Capture, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Capture{fs: fs, dir: dir}, nil
}

// Save writes one utterance. Failures are logged, never fatal: capture
// is diagnostics, not a feature.
func (c *Capture) Save(samples []int) {
	name := filepath.Join(c.dir, "utterance-"+strconv.FormatInt(time.Now().UnixNano(), 10)+".wav")

	f, err := c.fs.Create(name)
	if err != nil {
		zlog.Warn().Err(err).Msgf("whispermic: failed to create capture file %s", name)
		return
	}
	defer f.Close()

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           f,
		Channel:       1,
		SampleRate:    sampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		zlog.Warn().Err(err).Msg("whispermic: failed to create wav writer")
		return
	}
	defer writer.Close()

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		pcm[i] = int16(s)
	}
	if _, err := writer.WriteSample16(pcm); err != nil {
		zlog.Warn().Err(err).Msg("whispermic: failed to write capture samples")
	}
}
