package cache

import (
	"fmt"
	"strings"
)

// GenerateKey joins a namespace and an id into a cache key.
func GenerateKey(prefix, id string) string {
	return prefix + ":" + id
}

// GenerateKeyWithParams appends each param as a key segment after the prefix.
func GenerateKeyWithParams(prefix string, params ...any) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// BuildPattern turns a key namespace into a glob matching everything under it.
func BuildPattern(prefix string) string {
	return prefix + "*"
}
