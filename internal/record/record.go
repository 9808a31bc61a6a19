package record

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Record структурированная запись ключ-значение, аналог составного тега хоста.
// Значения хранятся в канонических типах NBT: int8, int32, int64, float32, string,
// вложенные map[string]interface{} и списки []map[string]interface{} / []string.
type Record map[string]interface{}

// New создаёт пустую запись
func New() Record {
	return make(Record)
}

// HasKey проверяет наличие ключа
func (r Record) HasKey(key string) bool {
	_, ok := r[key]
	return ok
}

// Remove удаляет ключ
func (r Record) Remove(key string) {
	delete(r, key)
}

// SetInt сохраняет целое как int32
func (r Record) SetInt(key string, v int) {
	r[key] = int32(v)
}

// SetLong сохраняет целое как int64
func (r Record) SetLong(key string, v int64) {
	r[key] = v
}

// SetFloat сохраняет число как float32
func (r Record) SetFloat(key string, v float32) {
	r[key] = v
}

// SetString сохраняет строку
func (r Record) SetString(key string, v string) {
	r[key] = v
}

// SetBool сохраняет флаг как байт
func (r Record) SetBool(key string, v bool) {
	var b int8
	if v {
		b = 1
	}
	r[key] = b
}

// SetRecord сохраняет вложенную запись
func (r Record) SetRecord(key string, v Record) {
	r[key] = map[string]interface{}(v)
}

// SetRecordList сохраняет список вложенных записей
func (r Record) SetRecordList(key string, list []Record) {
	out := make([]map[string]interface{}, len(list))
	for i, item := range list {
		out[i] = map[string]interface{}(item)
	}
	r[key] = out
}

// SetStringList сохраняет список строк
func (r Record) SetStringList(key string, list []string) {
	out := make([]string, len(list))
	copy(out, list)
	r[key] = out
}

// GetInt возвращает целое; отсутствующий ключ даёт 0
func (r Record) GetInt(key string) int {
	v, _ := toInt64(r[key])
	return int(v)
}

// GetLong возвращает int64; отсутствующий ключ даёт 0
func (r Record) GetLong(key string) int64 {
	v, _ := toInt64(r[key])
	return v
}

// GetFloat возвращает float32; отсутствующий ключ даёт 0
func (r Record) GetFloat(key string) float32 {
	switch v := r[key].(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	default:
		i, _ := toInt64(v)
		return float32(i)
	}
}

// GetString возвращает строку; отсутствующий ключ даёт ""
func (r Record) GetString(key string) string {
	s, _ := r[key].(string)
	return s
}

// GetBool возвращает флаг
func (r Record) GetBool(key string) bool {
	v, _ := toInt64(r[key])
	return v != 0
}

// GetRecord возвращает вложенную запись или пустую запись, если ключа нет
func (r Record) GetRecord(key string) Record {
	if rec, ok := asRecord(r[key]); ok {
		return rec
	}
	return New()
}

// GetRecordList возвращает список вложенных записей
func (r Record) GetRecordList(key string) []Record {
	switch list := r[key].(type) {
	case []map[string]interface{}:
		out := make([]Record, len(list))
		for i, item := range list {
			out[i] = Record(item)
		}
		return out
	case []Record:
		return list
	case []interface{}:
		out := make([]Record, 0, len(list))
		for _, item := range list {
			if rec, ok := asRecord(item); ok {
				out = append(out, rec)
			}
		}
		return out
	default:
		return nil
	}
}

// GetStringList возвращает список строк
func (r Record) GetStringList(key string) []string {
	switch list := r[key].(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// SetPos записывает координату тремя целыми ключами x, y, z
func (r Record) SetPos(pos vec.Vec3) {
	r.SetInt("x", pos.X)
	r.SetInt("y", pos.Y)
	r.SetInt("z", pos.Z)
}

// GetPos читает координату, записанную SetPos
func (r Record) GetPos() vec.Vec3 {
	return vec.Vec3{X: r.GetInt("x"), Y: r.GetInt("y"), Z: r.GetInt("z")}
}

func asRecord(v interface{}) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]interface{}:
		return Record(m), true
	default:
		return nil, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint8:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
