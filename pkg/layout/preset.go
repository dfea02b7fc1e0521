package layout

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
)

// Preset names a generation recipe.
type Preset string

const (
	PresetStar     Preset = "star"
	PresetTree     Preset = "tree"
	PresetRing     Preset = "ring"
	PresetBus      Preset = "bus"
	PresetMesh     Preset = "mesh"
	PresetFullMesh Preset = "fullmesh"
)

// Presets lists every preset in menu order.
var Presets = []Preset{PresetStar, PresetTree, PresetRing, PresetBus, PresetMesh, PresetFullMesh}

// ParsePreset converts user input into a Preset. "full-mesh", "full_mesh"
// and "linear" (the bus) are accepted as aliases.
func ParsePreset(s string) (Preset, error) {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case "full-mesh", "full_mesh":
		return PresetFullMesh, nil
	case "linear":
		return PresetBus, nil
	default:
		for _, known := range Presets {
			if Preset(p) == known {
				return known, nil
			}
		}
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidPreset, "unknown preset %q (valid: star, tree, ring, bus, mesh, fullmesh)", s)
}

// Default parameter values used when a field is zero.
const (
	DefaultStarNodes     = 5
	DefaultTreeLevels    = 3
	DefaultRingNodes     = 5
	DefaultBusNodes      = 5
	DefaultMeshRows      = 3
	DefaultMeshCols      = 3
	DefaultFullMeshNodes = 4
)

// Limits on a single generated batch.
const (
	MaxNodes       = 500
	MaxConnections = 5000
)

// Geometry constants in canvas units.
const (
	Radius      = 150.0
	Spacing     = 120.0
	LevelGap    = 120.0
	LeafSpacing = 100.0
)

// Params holds the size parameters of every preset. Only the fields a preset
// uses are read; zero means "use the default".
type Params struct {
	NodeCount int `json:"nodeCount,omitempty"`
	Levels    int `json:"levels,omitempty"`
	Rows      int `json:"rows,omitempty"`
	Cols      int `json:"cols,omitempty"`
}

// WithDefaults returns p with zero fields replaced by p's defaults for preset.
func (p Params) WithDefaults(preset Preset) Params {
	or := func(v, d int) int {
		if v == 0 {
			return d
		}
		return v
	}
	switch preset {
	case PresetStar:
		p.NodeCount = or(p.NodeCount, DefaultStarNodes)
	case PresetTree:
		p.Levels = or(p.Levels, DefaultTreeLevels)
	case PresetRing:
		p.NodeCount = or(p.NodeCount, DefaultRingNodes)
	case PresetBus:
		p.NodeCount = or(p.NodeCount, DefaultBusNodes)
	case PresetMesh:
		p.Rows = or(p.Rows, DefaultMeshRows)
		p.Cols = or(p.Cols, DefaultMeshCols)
	case PresetFullMesh:
		p.NodeCount = or(p.NodeCount, DefaultFullMeshNodes)
	}
	return p
}

// NodeTotal returns how many nodes preset would create with p (after
// defaults). Deep trees and huge grids saturate at math.MaxInt.
func (p Params) NodeTotal(preset Preset) int {
	p = p.WithDefaults(preset)
	switch preset {
	case PresetStar:
		return 1 + max(p.NodeCount, 0)
	case PresetTree:
		if p.Levels <= 0 {
			return 0
		}
		if p.Levels >= 62 {
			return math.MaxInt
		}
		return 1<<p.Levels - 1
	case PresetMesh:
		if p.Rows <= 0 || p.Cols <= 0 {
			return 0
		}
		if p.Rows > math.MaxInt/p.Cols {
			return math.MaxInt
		}
		return p.Rows * p.Cols
	default:
		return max(p.NodeCount, 0)
	}
}

// ConnectionTotal returns an upper bound on the connections preset would
// create with p (after defaults). The store may reject some of them, as in
// a ring of two. It saturates at math.MaxInt.
func (p Params) ConnectionTotal(preset Preset) int {
	n := p.NodeTotal(preset)
	switch {
	case n <= 1:
		return 0
	case n == math.MaxInt:
		return n
	}
	p = p.WithDefaults(preset)
	switch preset {
	case PresetStar, PresetTree:
		return n - 1
	case PresetRing:
		return n
	case PresetBus:
		return n - 1
	case PresetMesh:
		if n > math.MaxInt/2 {
			return math.MaxInt
		}
		return p.Rows*(p.Cols-1) + p.Cols*(p.Rows-1)
	case PresetFullMesh:
		if n > 1<<31 {
			return math.MaxInt
		}
		return n * (n - 1) / 2
	}
	return 0
}

// CheckLimits rejects parameters whose batch would exceed [MaxNodes] or
// [MaxConnections] with an INVALID_INPUT error.
func CheckLimits(preset Preset, p Params) error {
	if n := p.NodeTotal(preset); n > MaxNodes {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"%s preset would create %s nodes (max %d)", preset, total(n), MaxNodes)
	}
	if c := p.ConnectionTotal(preset); c > MaxConnections {
		return apperrors.New(apperrors.ErrCodeInvalidInput,
			"%s preset would create %s connections (max %d)", preset, total(c), MaxConnections)
	}
	return nil
}

func total(n int) string {
	if n == math.MaxInt {
		return "too many"
	}
	return strconv.Itoa(n)
}
