package dto

import (
	"bytes"
	"encoding/json"
)

// Optional различает отсутствующее поле, явный null и значение.
// encoding/json вызывает UnmarshalJSON только для присутствующих ключей.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr отдаёт значение или nil для отсутствующего и null поля.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
