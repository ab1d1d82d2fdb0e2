package ports

import "encoding/json"

// Field distinguishes "absent from the request" from "explicitly null".
// Absent means leave the stored value unchanged; null clears it where the
// target is optional.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// FieldOf builds a present, non-null field. Test and adapter convenience.
func FieldOf[T any](value T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: value}
}

// NullField builds a present-but-null field (an explicit clear).
func NullField[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
