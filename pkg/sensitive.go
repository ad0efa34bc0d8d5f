package tread

import (
	"fmt"
	"sort"
)

const masking = "<masked %s>"

// VariableStore is the contract shared by the template-variable store and
// the process environment: the builtin var/env actions operate on either
// through this interface.
type VariableStore interface {
	SetValue(name string, value interface{})
	Unset(name string)
	DeclareSensitive(name string)
	UpdateValues(values map[string]interface{})
}

// SensitiveDict is a string-keyed store in which some keys may be declared
// sensitive; the masked view replaces their values with a placeholder.
type SensitiveDict struct {
	data      map[string]interface{}
	sensitive map[string]struct{}

	masked *MaskedDict
}

func NewSensitiveDict() *SensitiveDict {
	return &SensitiveDict{
		data:      map[string]interface{}{},
		sensitive: map[string]struct{}{},
	}
}

func (d *SensitiveDict) Get(name string) (interface{}, bool) {
	v, ok := d.data[name]
	return v, ok
}

func (d *SensitiveDict) SetValue(name string, value interface{}) {
	d.data[name] = value
}

func (d *SensitiveDict) Unset(name string) {
	delete(d.data, name)
}

func (d *SensitiveDict) Len() int {
	return len(d.data)
}

func (d *SensitiveDict) Keys() []string {
	keys := make([]string, 0, len(d.data))
	for k := range d.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Data exposes the live backing map, for use as template data.
func (d *SensitiveDict) Data() map[string]interface{} {
	return d.data
}

func (d *SensitiveDict) UpdateValues(values map[string]interface{}) {
	for k, v := range values {
		d.data[k] = v
	}
}

// DeclareSensitive marks a key as sensitive. The key need not be set.
func (d *SensitiveDict) DeclareSensitive(name string) {
	d.sensitive[name] = struct{}{}
}

func (d *SensitiveDict) IsSensitive(name string) bool {
	_, ok := d.sensitive[name]
	return ok
}

func (d *SensitiveDict) Copy() *SensitiveDict {
	copied := NewSensitiveDict()
	for k, v := range d.data {
		copied.data[k] = v
	}
	for k := range d.sensitive {
		copied.sensitive[k] = struct{}{}
	}

	return copied
}

// Masked returns a read-only view in which every value is stringified and
// sensitive values are replaced by "<masked KEY>".
func (d *SensitiveDict) Masked() *MaskedDict {
	if d.masked == nil {
		d.masked = &MaskedDict{parent: d}
	}

	return d.masked
}

// MaskedDict is the read-only masking proxy over a SensitiveDict.
type MaskedDict struct {
	parent *SensitiveDict
}

func (m *MaskedDict) Get(name string) (string, bool) {
	if _, ok := m.parent.Get(name); !ok {
		return "", false
	}
	if m.parent.IsSensitive(name) {
		return fmt.Sprintf(masking, name), true
	}

	v, _ := m.parent.Get(name)
	return fmt.Sprintf("%v", v), true
}

func (m *MaskedDict) Len() int {
	return m.parent.Len()
}

func (m *MaskedDict) Keys() []string {
	return m.parent.Keys()
}

func (m *MaskedDict) String() string {
	out := map[string]string{}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[k] = v
	}

	return fmt.Sprintf("%v", out)
}
