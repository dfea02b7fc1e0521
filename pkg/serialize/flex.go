package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexInt accepts a JSON number or a numeric string. Fractions are truncated.
type flexInt struct {
	val int
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if json.Unmarshal(b, &s) != nil {
			return fmt.Errorf("expected a number, got %s", b)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if n, err = strconv.ParseFloat(s, 64); err != nil {
			return fmt.Errorf("expected a number, got %q", s)
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
		return fmt.Errorf("number %v out of range", n)
	}
	f.val, f.set = int(n), true
	return nil
}

// idKey is a legacy document id: a number, a numeric string, or an opaque
// string such as "vm1". key is the canonical text used to cross-reference
// connections; num is set only for numeric ids.
type idKey struct {
	key     string
	num     int
	numeric bool
}

func (k *idKey) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n flexInt
	if err := n.UnmarshalJSON(b); err == nil {
		if n.set {
			k.key, k.num, k.numeric = strconv.Itoa(n.val), n.val, true
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("id must be a number or a string, got %s", b)
	}
	k.key = strings.TrimSpace(s)
	return nil
}

func (k idKey) set() bool { return k.key != "" }

// flexBool accepts true/false, 0/1 and their string spellings.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(strings.Trim(string(b), `"`)) {
	case "true", "1", "yes", "on":
		*f = true
	case "false", "0", "no", "off", "", "null":
		*f = false
	default:
		return fmt.Errorf("expected a boolean, got %s", b)
	}
	return nil
}

// ref is a connection endpoint given either as a node id or a node name.
type ref struct {
	id   int
	name string
	set  bool
}

func (r *ref) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.name, r.set = s, s != ""
		return nil
	}
	var n flexInt
	if err := n.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("endpoint must be a node id or name, got %s", b)
	}
	r.id, r.set = n.val, n.set
	return nil
}

// first returns the first reference that was present in the input.
func first(refs ...ref) ref {
	for _, r := range refs {
		if r.set {
			return r
		}
	}
	return ref{}
}
