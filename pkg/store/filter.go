package store

import (
	"sort"
	"strings"
)

// Attribute names of the fixed filter vocabulary.
const (
	AttrGender         = "gender"
	AttrMasterCategory = "mastercategory"
	AttrSubCategory    = "subcategory"
	AttrArticleType    = "articletype"
	AttrBaseColour     = "basecolour"
	AttrSeason         = "season"
	AttrYear           = "year"
	AttrUsage          = "usage"
)

// Attributes lists the only keys a FilterSet may carry, in display order.
var Attributes = []string{
	AttrGender,
	AttrMasterCategory,
	AttrSubCategory,
	AttrArticleType,
	AttrBaseColour,
	AttrSeason,
	AttrYear,
	AttrUsage,
}

func IsAttribute(name string) bool {
	for _, a := range Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// FilterSet maps an attribute to its allowed values. One value means equality,
// several mean membership.
type FilterSet map[string][]string

// Normalize keeps vocabulary keys only, trims values, removes blanks and
// duplicates, and drops attributes left without values.
func (f FilterSet) Normalize() FilterSet {
	out := FilterSet{}
	for key, values := range f {
		key = strings.ToLower(strings.TrimSpace(key))
		if !IsAttribute(key) {
			continue
		}
		seen := map[string]bool{}
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out[key] = append(out[key], v)
		}
	}
	return out
}

func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Keys returns the attributes present, in vocabulary order.
func (f FilterSet) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, a := range Attributes {
		if _, ok := f[a]; ok {
			keys = append(keys, a)
		}
	}
	return keys
}

// Equal compares two sets ignoring value order.
func (f FilterSet) Equal(other FilterSet) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		w, ok := other[k]
		if !ok || len(v) != len(w) {
			return false
		}
		a := append([]string(nil), v...)
		b := append([]string(nil), w...)
		sort.Strings(a)
		sort.Strings(b)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Vocabulary holds the live allowed values per attribute.
type Vocabulary map[string][]string

// Contains reports whether value is allowed for attribute, case-insensitively.
func (v Vocabulary) Contains(attribute, value string) bool {
	for _, allowed := range v[attribute] {
		if strings.EqualFold(allowed, value) {
			return true
		}
	}
	return false
}

// Canonical returns the vocabulary spelling of value, if present.
func (v Vocabulary) Canonical(attribute, value string) (string, bool) {
	for _, allowed := range v[attribute] {
		if strings.EqualFold(allowed, value) {
			return allowed, true
		}
	}
	return "", false
}
