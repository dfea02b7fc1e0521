package topology

import (
	"math"
	"strconv"
	"strings"
)

// Resource names a numeric resource hint on a node.
type Resource string

const (
	ResourceCPU    Resource = "cpu"
	ResourceMemory Resource = "memory"
	ResourceDisk   Resource = "disk"
)

// ResourceMinimums is the floor applied to each resource field. Anything
// lower, including unparsable free text, is replaced by the floor.
var ResourceMinimums = map[Resource]int{
	ResourceCPU:    1,
	ResourceMemory: 1,
	ResourceDisk:   10,
}

// Node defaults applied by [Store.CreateNode].
const (
	DefaultKind     = KindHost
	DefaultImage    = "cirros"
	DefaultCPU      = 2
	DefaultMemoryGB = 4
	DefaultDiskGB   = 20
)

// ClampResource raises v to the minimum for r.
func ClampResource(r Resource, v int) int {
	return max(v, ResourceMinimums[r])
}

// CoerceResource turns free-text input into a resource value. Blank or
// unparsable text yields the minimum; fractional input is truncated before
// clamping.
func CoerceResource(r Resource, text string) int {
	text = strings.TrimSpace(text)
	if v, err := strconv.Atoi(text); err == nil {
		return ClampResource(r, v)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return ResourceMinimums[r]
	}
	return ClampResource(r, int(f))
}
