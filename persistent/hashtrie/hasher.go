package hashtrie

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Hasher hashes keys and compares them for equality. Keys which are equal must have
// the same hash.
type Hasher[K any] interface {
	Hash(key K) uint32
	Equal(a, b K) bool
}

// NewHasher returns the built-in hasher for comparable keys.
// Keys are hashed with xxhash. Strings, booleans and numbers are hashed from their binary
// representation. Arrays, structs and interfaces are walked down to their basic
// components, pointers and channels contribute their address. Floats are normalized
// so that +0 and -0 hash alike.
func NewHasher[K comparable]() Hasher[K] {
	return defaultHasher[K]{}
}

type defaultHasher[K comparable] struct{}

func (defaultHasher[K]) Hash(key K) uint32 {
	switch k := any(key).(type) {
	case string:
		return fold(xxhash.Sum64String(k))
	case int:
		return hashUint(uint64(k))
	case int8:
		return hashUint(uint64(k))
	case int16:
		return hashUint(uint64(k))
	case int32:
		return hashUint(uint64(k))
	case int64:
		return hashUint(uint64(k))
	case uint:
		return hashUint(uint64(k))
	case uint8:
		return hashUint(uint64(k))
	case uint16:
		return hashUint(uint64(k))
	case uint32:
		return hashUint(uint64(k))
	case uint64:
		return hashUint(k)
	case uintptr:
		return hashUint(uint64(k))
	case bool:
		if k {
			return hashUint(1)
		}
		return hashUint(0)
	case float32:
		return hashFloat(float64(k))
	case float64:
		return hashFloat(k)
	}
	d := xxhash.New()
	writeValue(d, reflect.ValueOf(any(key)))
	return fold(d.Sum64())
}

func (defaultHasher[K]) Equal(a, b K) bool {
	return a == b
}

func hashUint(u uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return fold(xxhash.Sum64(buf[:]))
}

func hashFloat(f float64) uint32 {
	return hashUint(floatBits(f))
}

func floatBits(f float64) uint64 {
	if f == 0 { // +0 == -0
		f = 0
	}
	return math.Float64bits(f)
}

// writeValue feeds the components of a comparable value into d. Values equal under ==
// produce equal input.
func writeValue(d *xxhash.Digest, v reflect.Value) {
	var buf [8]byte
	put := func(u uint64) {
		binary.LittleEndian.PutUint64(buf[:], u)
		_, _ = d.Write(buf[:])
	}
	switch v.Kind() {
	case reflect.Invalid: // nil interface
		put(0)
	case reflect.Bool:
		if v.Bool() {
			put(1)
		} else {
			put(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		put(uint64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		put(v.Uint())
	case reflect.Float32, reflect.Float64:
		put(floatBits(v.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		put(floatBits(real(c)))
		put(floatBits(imag(c)))
	case reflect.String:
		_, _ = d.WriteString(v.String())
		put(uint64(v.Len()))
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			writeValue(d, v.Index(i))
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).Name != "_" { // blank fields do not take part in ==
				writeValue(d, v.Field(i))
			}
		}
	case reflect.Interface:
		if v.IsNil() {
			put(0)
			return
		}
		_, _ = d.WriteString(v.Elem().Type().String())
		writeValue(d, v.Elem())
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		put(uint64(v.Pointer()))
	default:
		assertThat(false, "cannot hash value of kind %s", v.Kind())
	}
}

func fold(h uint64) uint32 {
	return uint32(h) ^ uint32(h>>32)
}

// HasherFunc creates a hasher for comparable keys from a hash function.
func HasherFunc[K comparable](hash func(K) uint32) Hasher[K] {
	return funcHasher[K]{
		hash:  hash,
		equal: func(a, b K) bool { return a == b },
	}
}

// HasherWith creates a hasher from a hash function and an equality predicate.
// Use it for keys which are not comparable by ==.
func HasherWith[K any](hash func(K) uint32, equal func(a, b K) bool) Hasher[K] {
	assertThat(hash != nil && equal != nil, "hasher needs hash and equality functions")
	return funcHasher[K]{hash: hash, equal: equal}
}

type funcHasher[K any] struct {
	hash  func(K) uint32
	equal func(a, b K) bool
}

func (h funcHasher[K]) Hash(key K) uint32 { return h.hash(key) }
func (h funcHasher[K]) Equal(a, b K) bool { return h.equal(a, b) }
