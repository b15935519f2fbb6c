// A small WAVE file writer that does not require knowing the length of
// the audio up front: it seeks back and patches the RIFF and data chunk
// sizes once writing is finished.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format documentation.
package wav

import (
	"encoding/binary"
	"errors"
	"io"
)

const wavTypePCM = 1

// ErrInvalidChunkHeaderLength means the provided chunk name was not 4
// characters.
var ErrInvalidChunkHeaderLength = errors.New("chunk header name is not 4 characters")

// Writer writes a WAV file to WS as samples arrive.
type Writer struct {
	WS       io.WriteSeeker
	channels int
}

type format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// NewWriter returns a Writer for channels-channel 16-bit PCM audio at
// sampleRate, writing into ws.
func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	w := &Writer{WS: ws, channels: channels}

	if err := w.writeChunkHeader("RIFF", 0); err != nil {
		return nil, err
	}
	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}
	if err := w.writeChunkHeader("fmt ", 16); err != nil {
		return nil, err
	}
	f := format{
		AudioFormat:   wavTypePCM,
		Channels:      uint16(channels),
		SampleRate:    uint32(sampleRate),
		BitsPerSample: 16,
	}
	f.BlockAlign = uint16(channels) * 2
	f.ByteRate = uint32(sampleRate) * uint32(f.BlockAlign)
	if err := binary.Write(ws, binary.LittleEndian, f); err != nil {
		return nil, err
	}
	if err := w.writeChunkHeader("data", 0); err != nil {
		return nil, err
	}
	return w, nil
}

// WriteFrame writes interleaved samples, channels values per frame.
func (w *Writer) WriteFrame(samples []int16) error {
	return binary.Write(w.WS, binary.LittleEndian, samples)
}

// Finish patches the RIFF and data chunk sizes now that the total length
// is known, and must be called once no more frames will be written.
func (w *Writer) Finish() (int64, error) {
	wlen, err := w.WS.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if _, err := w.WS.Seek(4, io.SeekStart); err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}
	if _, err := w.WS.Seek(40, io.SeekStart); err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-44)); err != nil {
		return 0, err
	}
	return wlen, nil
}

func (w *Writer) writeChunkHeader(chunk string, initialSize int) error {
	if len(chunk) != 4 {
		return ErrInvalidChunkHeaderLength
	}
	if n, err := w.WS.Write([]byte(chunk)); n != 4 || err != nil {
		return err
	}
	return binary.Write(w.WS, binary.LittleEndian, int32(initialSize))
}
