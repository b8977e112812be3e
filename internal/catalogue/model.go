package catalogue

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Param is a single native parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Hash is a native hash identifier. It decodes from either a JSON string
// ("0x5A47B3B5E63E94C6") or a JSON number.
type Hash struct {
	Value uint64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Hash) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*h = Hash{}
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	v, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = Hash{Value: v, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (h Hash) MarshalJSON() ([]byte, error) {
	if !h.Set {
		return []byte("null"), nil
	}
	return json.Marshal(h.String())
}

// String returns the hash as an upper-case hex literal.
func (h Hash) String() string {
	if !h.Set {
		return ""
	}
	return "0x" + strings.ToUpper(strconv.FormatUint(h.Value, 16))
}

// ParseHash parses a hash in hex ("0x..."), or decimal notation.
func ParseHash(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid hash %q", s)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid hash %q", s)
	}
	return v, nil
}

// Function describes one native function.
type Function struct {
	Name       string   `json:"name,omitempty"`
	Params     []Param  `json:"params"`
	ReturnType string   `json:"return_type,omitempty"`
	Hash       Hash     `json:"hash"`
	JHash      Hash     `json:"jhash"`
	Comment    string   `json:"comment,omitempty"`
	Build      string   `json:"build,omitempty"`
	OldNames   []string `json:"old_names,omitempty"`
	Deprecated bool     `json:"deprecated,omitempty"`
}

// functionJSON mirrors Function, accepting "return" as an alias of
// "return_type" and a numeric or string "build".
type functionJSON struct {
	Name       string          `json:"name"`
	Params     []Param         `json:"params"`
	ReturnType string          `json:"return_type"`
	Return     string          `json:"return"`
	Hash       Hash            `json:"hash"`
	JHash      Hash            `json:"jhash"`
	Comment    string          `json:"comment"`
	Build      json.RawMessage `json:"build"`
	OldNames   []string        `json:"old_names"`
	Deprecated bool            `json:"deprecated"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Function) UnmarshalJSON(data []byte) error {
	var raw functionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ret := raw.ReturnType
	if ret == "" {
		ret = raw.Return
	}
	build := strings.TrimSpace(string(raw.Build))
	if build == "null" {
		build = ""
	}
	if unquoted, err := strconv.Unquote(build); err == nil {
		build = unquoted
	}
	*f = Function{
		Name:       raw.Name,
		Params:     raw.Params,
		ReturnType: ret,
		Hash:       raw.Hash,
		JHash:      raw.JHash,
		Comment:    raw.Comment,
		Build:      build,
		OldNames:   raw.OldNames,
		Deprecated: raw.Deprecated,
	}
	return nil
}

// Group is the ordered set of functions of one native namespace, keyed the
// way the source document keys them (by name or by hash).
type Group = orderedmap.OrderedMap[string, *Function]

// Catalogue is the full, ordered collection of native functions grouped by
// namespace. It is read-only once decoded.
type Catalogue struct {
	groups *orderedmap.OrderedMap[string, *Group]
}

// Len returns the number of groups.
func (c *Catalogue) Len() int {
	if c == nil || c.groups == nil {
		return 0
	}
	return c.groups.Len()
}

// FunctionCount returns the number of functions across all groups.
func (c *Catalogue) FunctionCount() int {
	n := 0
	c.EachGroup(func(_ string, g *Group) bool {
		if g != nil {
			n += g.Len()
		}
		return true
	})
	return n
}

// Group returns the functions of the named group.
func (c *Catalogue) Group(name string) (*Group, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	return c.groups.Get(name)
}

// GroupNames returns group names in document order.
func (c *Catalogue) GroupNames() []string {
	names := make([]string, 0, c.Len())
	c.EachGroup(func(name string, _ *Group) bool {
		names = append(names, name)
		return true
	})
	return names
}

// EachGroup calls fn for every group in document order until fn returns false.
func (c *Catalogue) EachGroup(fn func(name string, g *Group) bool) {
	if c.Len() == 0 {
		return
	}
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Each calls fn for every function in document order until fn returns an
// error, which is then returned.
func (c *Catalogue) Each(fn func(group, key string, f *Function) error) error {
	var err error
	c.EachGroup(func(name string, g *Group) bool {
		if g == nil {
			return true
		}
		for pair := g.Oldest(); pair != nil; pair = pair.Next() {
			if err = fn(name, pair.Key, pair.Value); err != nil {
				return false
			}
		}
		return true
	})
	return err
}
