package bitstream

import "reflect"

// Override is an optional value at one level of the parameter set
// hierarchy. An absent Override inherits the value of the enclosing level.
type Override[T any] struct {
	Present bool
	Value   T
}

// Overridden returns a present Override carrying v.
func Overridden[T any](v T) Override[T] {
	return Override[T]{Present: true, Value: v}
}

// Inherited returns an absent Override.
func Inherited[T any]() Override[T] {
	return Override[T]{}
}

// Resolve returns the override value when present, otherwise parent.
func (o Override[T]) Resolve(parent T) T {
	if o.Present {
		return o.Value
	}
	return parent
}

// Get returns the value and whether it is present.
func (o Override[T]) Get() (T, bool) {
	return o.Value, o.Present
}

// isZero reports whether v is the zero value. Empty slices count as zero.
func isZero[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return rv.IsZero()
}

// requireZero fails unless v is zero. It guards values the syntax has no room
// for, since they would not survive decoding.
func requireZero[T any](fw *fieldWriter, name string, v T, what string) bool {
	return fw.require(isZero(v), name, "%s is set but not coded", what)
}

// requireInherited fails when an absent override carries a value.
func requireInherited[T any](fw *fieldWriter, name string, o Override[T]) {
	if !o.Present {
		requireZero(fw, name, o.Value, "value of an inherited override")
	}
}
