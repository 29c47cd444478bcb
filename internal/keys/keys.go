// Package keys builds gencache's hierarchical string keys.
//
//	{prefix}{cluster}-{typeClear}/{type}/{gen}/{op}/{fingerprint}
//	{prefix}{cluster}-{typeClear}/{type}/p:{value}/{partitionGen}/{op}/{fingerprint}
//	{key}=>pagingTotal
//
// Everything here is pure; generation values come from the caller.
package keys

import (
	"encoding"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/unkn0wn-root/gencache/predicate"
)

// PagingTotalSuffix marks the sibling entry holding a paged query's total.
const PagingTotalSuffix = "=>pagingTotal"

// Prefix joins the configured prefix, the cluster-wide generation and the
// per-type clear counter. Bumping either abandons every key under it.
func Prefix(cachePrefix string, cluster, typeClear int64) string {
	return cachePrefix + strconv.FormatInt(cluster, 10) + "-" + strconv.FormatInt(typeClear, 10)
}

// BuildKey assembles a query key. The generation segment precedes the op and
// fingerprint so a new generation can never reproduce an old key.
func BuildKey(prefix, typeName, generationSegment, op, fingerprint string) string {
	return prefix + "/" + typeName + "/" + generationSegment + "/" + op + "/" + fingerprint
}

// GenerationSegment is the whole-type generation segment.
func GenerationSegment(gen int64) string {
	return strconv.FormatInt(gen, 10)
}

// PartitionSegment replaces GenerationSegment for partition-scoped keys.
// value must already be rendered with PartitionValue.
func PartitionSegment(value string, gen int64) string {
	return "p:" + value + "/" + strconv.FormatInt(gen, 10)
}

// PartitionValue renders a partition value as one path segment.
func PartitionValue(v any) (string, error) {
	return Value(v)
}

// Value renders v as one path segment. Values that predicate.CanonicalValue
// considers equal always render identically; String methods are never
// consulted. Integers, strings and bools keep a readable form, anything else
// is ';' followed by the canonical hex. Segment escapes ';', so an escaped
// string never looks like the hex form.
func Value(v any) (string, error) {
	if s, ok := plainValue(v); ok {
		return s, nil
	}
	cv, err := predicate.CanonicalValue(v)
	if err != nil {
		return "", err
	}
	return ";" + cv, nil
}

var (
	cborMarshaler   = reflect.TypeOf((*cbor.Marshaler)(nil)).Elem()
	binaryMarshaler = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
)

// plainValue formats by reflect kind, the way the CBOR encoder sees the value.
func plainValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if t := rv.Type(); t.Implements(cborMarshaler) || t.Implements(binaryMarshaler) ||
		reflect.PointerTo(t).Implements(cborMarshaler) || reflect.PointerTo(t).Implements(binaryMarshaler) {
		return "", false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.String:
		return Segment(rv.String()), true
	}
	return "", false
}

// Segment escapes s so it cannot introduce extra '/' separated segments.
func Segment(s string) string {
	return url.PathEscape(s)
}

// GenerationKey names the whole-type generation counter.
func GenerationKey(prefix, typeName string) string {
	return prefix + "/" + typeName + "/Generation"
}

// PartitionGenerationKey names a partition's generation counter.
func PartitionGenerationKey(prefix, typeName, value string) string {
	return prefix + "/" + typeName + "/p:" + value + "/Generation"
}

// ClearAllKey names the per-type clear counter. It hangs off the bare cache
// prefix because it is an input to Prefix.
func ClearAllKey(cachePrefix, typeName string) string {
	return cachePrefix + "/" + typeName + "/ClearAll"
}

// IDKey is the write-through key of a single entity. Each id value is
// rendered with Value, so a comma inside one is escaped.
func IDKey(prefix, typeName string, id []any) (string, error) {
	parts := make([]string, len(id))
	for i, v := range id {
		s, err := Value(v)
		if err != nil {
			return "", fmt.Errorf("id[%d]: %w", i, err)
		}
		parts[i] = s
	}
	return prefix + "/" + typeName + "/id/" + strings.Join(parts, ","), nil
}

// PagingTotalKey is the sibling key storing the total for a paged key.
func PagingTotalKey(key string) string {
	return key + PagingTotalSuffix
}
