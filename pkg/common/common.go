package common

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	idNode     *snowflake.Node
	idNodeOnce sync.Once
)

func node() *snowflake.Node {
	idNodeOnce.Do(func() {
		var err error
		idNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return idNode
}

// UUIDint64 returns a time ordered snowflake id
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// ParseInt64 parses a decimal id, tolerating surrounding whitespace
func ParseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// GenerateSKU builds the fallback stock keeping unit BHR-<unix-ms>-<0..999>
func GenerateSKU(now time.Time) string {
	return fmt.Sprintf("BHR-%d-%d", now.UnixMilli(), rand.Intn(1000)) //nolint:gosec
}

// IsEmpty reports whether s contains only whitespace
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// If returns t when cond holds, else f
func If[T any](cond bool, t, f T) T {
	if cond {
		return t
	}
	return f
}
