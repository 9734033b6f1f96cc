// Package types defines the key contract shared by the concurrent AVL map
// (pkg/avl) and its sequential variant (pkg/avlseq): a totally ordered,
// comparable key, plus the handful of concrete key kinds the tests exercise.
package types

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/bobboyms/cavl/pkg/errors"
)

// Comparable is the interface every map key must implement.
// Compare returns -1 if the receiver sorts before other, 0 if equal, 1 if after.
type Comparable interface {
	Compare(other Comparable) int
}

// === Concrete key kinds ===

// IntKey is an integer key.
type IntKey int

func (k IntKey) Compare(other Comparable) int {
	o, ok := other.(IntKey)
	if !ok {
		panic(&errors.IncomparableKeyError{Want: "types.IntKey", Got: fmt.Sprintf("%T", other)})
	}
	if k < o {
		return -1
	}
	if k > o {
		return 1
	}
	return 0
}

// VarcharKey is a string key.
type VarcharKey string

func (k VarcharKey) Compare(other Comparable) int {
	o, ok := other.(VarcharKey)
	if !ok {
		panic(&errors.IncomparableKeyError{Want: "types.VarcharKey", Got: fmt.Sprintf("%T", other)})
	}
	if k < o {
		return -1
	}
	if k > o {
		return 1
	}
	return 0
}

// FloatKey is a float64 key.
type FloatKey float64

func (k FloatKey) Compare(other Comparable) int {
	o, ok := other.(FloatKey)
	if !ok {
		panic(&errors.IncomparableKeyError{Want: "types.FloatKey", Got: fmt.Sprintf("%T", other)})
	}
	if k < o {
		return -1
	}
	if k > o {
		return 1
	}
	return 0
}

// BoolKey is a boolean key (false < true).
type BoolKey bool

func (k BoolKey) Compare(other Comparable) int {
	o, ok := other.(BoolKey)
	if !ok {
		panic(&errors.IncomparableKeyError{Want: "types.BoolKey", Got: fmt.Sprintf("%T", other)})
	}
	if k == o {
		return 0
	}
	if !k && o {
		return -1
	}
	return 1
}

// DateKey is a timestamp key.
type DateKey time.Time

func (k DateKey) Compare(other Comparable) int {
	o, ok := other.(DateKey)
	if !ok {
		panic(&errors.IncomparableKeyError{Want: "types.DateKey", Got: fmt.Sprintf("%T", other)})
	}
	t, ot := time.Time(k), time.Time(o)
	if t.Before(ot) {
		return -1
	}
	if t.After(ot) {
		return 1
	}
	return 0
}

func (k DateKey) String() string {
	return time.Time(k).Format("2006-01-02 15:04:05")
}

func (k IntKey) String() string     { return fmt.Sprintf("%d", k) }
func (k VarcharKey) String() string { return string(k) }
func (k FloatKey) String() string   { return fmt.Sprintf("%f", k) }
func (k BoolKey) String() string    { return fmt.Sprintf("%t", bool(k)) }

// Fingerprint returns a canonical, type-discriminated byte encoding of a key.
// It BSON-marshals a small {type, value} envelope per key. pkg/avl's stress
// test uses it as the key bytes of every put/remove it journals to
// pkg/oplog. Not used on any hot path of the map itself.
func Fingerprint(k Comparable) ([]byte, error) {
	var kind string
	var value any

	switch v := k.(type) {
	case IntKey:
		kind, value = "int", int64(v)
	case VarcharKey:
		kind, value = "varchar", string(v)
	case FloatKey:
		kind, value = "float", float64(v)
	case BoolKey:
		kind, value = "bool", bool(v)
	case DateKey:
		kind, value = "date", time.Time(v).UnixNano()
	default:
		kind, value = fmt.Sprintf("%T", k), fmt.Sprintf("%v", k)
	}

	return bson.Marshal(bson.D{{Key: "type", Value: kind}, {Key: "value", Value: value}})
}
