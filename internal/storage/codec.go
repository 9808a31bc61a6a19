package storage

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/klauspost/compress/zstd"
)

// Формат значения: байт-маркер и NBT-тело (сжатое zstd или нет)
const (
	markerRaw  byte = 0x00
	markerZstd byte = 0x01
)

// Codec кодирует записи для хранилищ
type Codec struct {
	compress     bool
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
}

// NewCodec создаёт кодек; при compress=false значения пишутся без сжатия, но читаются оба формата
func NewCodec(compress bool) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}
	return &Codec{compress: compress, compressor: enc, decompressor: dec}, nil
}

// Encode сериализует запись
func (c *Codec) Encode(rec record.Record) ([]byte, error) {
	body, err := record.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации записи: %w", err)
	}
	if !c.compress {
		return append([]byte{markerRaw}, body...), nil
	}
	return c.compressor.EncodeAll(body, []byte{markerZstd}), nil
}

// Decode восстанавливает запись
func (c *Codec) Decode(data []byte) (record.Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("пустое значение")
	}
	body := data[1:]
	switch data[0] {
	case markerRaw:
	case markerZstd:
		var err error
		body, err = c.decompressor.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("ошибка распаковки: %w", err)
		}
	default:
		return nil, fmt.Errorf("неизвестный формат значения 0x%02x", data[0])
	}

	rec, err := record.Unmarshal(body)
	if err != nil {
		return nil, fmt.Errorf("ошибка десериализации записи: %w", err)
	}
	return rec, nil
}

// Close освобождает ресурсы zstd
func (c *Codec) Close() {
	c.compressor.Close()
	c.decompressor.Close()
}
