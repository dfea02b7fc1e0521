package editor

import (
	"strings"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
)

// LinkState is the link-mode state.
type LinkState int

const (
	Idle LinkState = iota
	LinkArmed
	LinkSourceSelected
)

func (s LinkState) String() string {
	switch s {
	case Idle:
		return "idle"
	case LinkArmed:
		return "armed"
	case LinkSourceSelected:
		return "source-selected"
	}
	return "unknown"
}

// LinkPolicy decides what happens after a connection is made in link mode.
type LinkPolicy string

const (
	// StayArmed keeps link mode on with no source, ready for the next pair.
	StayArmed LinkPolicy = "stay-armed"
	// ExitAfterConnect leaves link mode after every connection.
	ExitAfterConnect LinkPolicy = "exit-after-connect"
)

// ParseLinkPolicy accepts "stay-armed" and "exit-after-connect". The empty
// string means [StayArmed].
func ParseLinkPolicy(s string) (LinkPolicy, error) {
	switch p := LinkPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return StayArmed, nil
	case StayArmed, ExitAfterConnect:
		return p, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidInput, "unknown link policy %q (valid: stay-armed, exit-after-connect)", s)
}
