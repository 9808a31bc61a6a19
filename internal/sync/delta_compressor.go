package sync

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ErrCorruptBatch пакет не разбирается
var ErrCorruptBatch = errors.New("sync: повреждённый пакет")

// DeltaCompressor кодирует/декодирует изменения (Change) в компактный вид.
type DeltaCompressor interface {
	Compress(changes []Change) ([]byte, error)
	Decompress(payload []byte) ([]Change, error)
}

type passthroughCompressor struct{}

// NewPassthroughCompressor кадрирует изменения без сжатия
func NewPassthroughCompressor() DeltaCompressor { return &passthroughCompressor{} }

// Формат кадра:
// [u8 len][type] [u8 len][source] [u8 len][key] [i64 ts] [u8 prio] [u32 len][data]
func (p *passthroughCompressor) Compress(changes []Change) ([]byte, error) {
	buf := make([]byte, 0, 64*len(changes))
	for _, c := range changes {
		for _, s := range []string{c.ChangeType, c.SourceRegion, c.Key} {
			if len(s) > 255 {
				return nil, fmt.Errorf("sync: строка %q длиннее 255 байт", s)
			}
			buf = append(buf, byte(len(s)))
			buf = append(buf, s...)
		}
		buf = binary.BigEndian.AppendUint64(buf, uint64(c.Timestamp.UnixNano()))
		buf = append(buf, byte(c.Priority))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Data)))
		buf = append(buf, c.Data...)
	}
	return buf, nil
}

func (p *passthroughCompressor) Decompress(payload []byte) ([]Change, error) {
	var res []Change
	r := frameReader{buf: payload}
	for r.more() {
		var c Change
		c.ChangeType = r.str()
		c.SourceRegion = r.str()
		c.Key = r.str()
		c.Timestamp = time.Unix(0, int64(r.u64())).UTC()
		c.Priority = int(r.u8())
		c.Data = r.bytes(int(r.u32()))
		if r.err != nil {
			return nil, r.err
		}
		res = append(res, c)
	}
	return res, nil
}

type frameReader struct {
	buf []byte
	off int
	err error
}

func (r *frameReader) more() bool { return r.err == nil && r.off < len(r.buf) }

func (r *frameReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: смещение %d, нужно %d байт", ErrCorruptBatch, r.off, n)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *frameReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *frameReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *frameReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *frameReader) str() string {
	return string(r.take(int(r.u8())))
}

func (r *frameReader) bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// zstdCompressor сжимает кадры zstd
type zstdCompressor struct {
	frames  passthroughCompressor
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCompressor создаёт компрессор; encoder и decoder безопасны для параллельного EncodeAll/DecodeAll
func NewZstdCompressor() (DeltaCompressor, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &zstdCompressor{encoder: enc, decoder: dec}, nil
}

func (z *zstdCompressor) Compress(changes []Change) ([]byte, error) {
	raw, err := z.frames.Compress(changes)
	if err != nil {
		return nil, err
	}
	return z.encoder.EncodeAll(raw, nil), nil
}

func (z *zstdCompressor) Decompress(payload []byte) ([]Change, error) {
	raw, err := z.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBatch, err)
	}
	return z.frames.Decompress(raw)
}
