package helper

import (
	"fmt"
	"strings"

	"github.com/cevaris/ordered_map"

	"github.com/gallerops/dwpipe/logger"
)

// TokensToOrderedMap converts a string of the form, 'k1:v1,k2:v2' into an ordered map
// and returns a pointer to it.
// 1) Split on comma to find each key:value pair.
// 2) Split on colon to separate the key from the value.
func TokensToOrderedMap(s string) *ordered_map.OrderedMap {
	o := ordered_map.NewOrderedMap()
	tokens := strings.Split(s, ",")
	if len(tokens) > 0 { // if there is a key pair...
		for idx := range tokens {
			x := strings.Split(tokens[idx], ":")
			if len(x) >= 2 { // if there is a key:value...
				o.Set(strings.TrimSpace(x[0]), strings.TrimSpace(x[1])) // set key, value
			}
		}
	}
	return o
}

// OrderedMapKeysToStringSlice appends ordered map keys into the supplied slice starting at
// position *idx, advancing *idx as it goes. All keys are expected to be of type string.
func OrderedMapKeysToStringSlice(log logger.Logger, om *ordered_map.OrderedMap, out *[]string, idx *int) {
	iter := om.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		(*out)[*idx] = kv.Key.(string)
		*idx++
	}
}

// GenerateStringOfBindPlaceholders returns "?,?,..." with n placeholders.
func GenerateStringOfBindPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", n), ",")
}

// GenerateStringOfColsEqualsBinds builds "col1 = ?<sep>col2 = ?..." for SET/WHERE clauses.
func GenerateStringOfColsEqualsBinds(cols []string, sep string) string {
	b := strings.Builder{}
	for idx, col := range cols {
		if idx != 0 {
			b.WriteString(sep)
		}
		b.WriteString(fmt.Sprintf("%v = ?", col))
	}
	return b.String()
}
