package record

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
)

// EncodeNBT кодирует запись в бинарный NBT с корневым тегом name
func EncodeNBT(w io.Writer, rec Record, name string) error {
	if err := nbt.NewEncoder(w).Encode(map[string]interface{}(rec), name); err != nil {
		return fmt.Errorf("ошибка кодирования NBT: %w", err)
	}
	return nil
}

// DecodeNBT читает запись из бинарного NBT и возвращает имя корневого тега
func DecodeNBT(r io.Reader) (Record, string, error) {
	var m map[string]interface{}
	name, err := nbt.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка декодирования NBT: %w", err)
	}
	if m == nil {
		m = make(map[string]interface{})
	}
	return Record(m), name, nil
}

// Marshal кодирует запись в срез байт (без сжатия)
func Marshal(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeNBT(&buf, rec, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal декодирует запись из среза байт
func Unmarshal(data []byte) (Record, error) {
	rec, _, err := DecodeNBT(bytes.NewReader(data))
	return rec, err
}

// MarshalGzip кодирует запись в NBT, сжатый gzip, как файлы сохранений хоста
func MarshalGzip(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := EncodeNBT(gz, rec, ""); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGzip декодирует запись, сжатую MarshalGzip
func UnmarshalGzip(data []byte) (Record, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	rec, _, err := DecodeNBT(gz)
	return rec, err
}
