package geo

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/paulmach/orb/geojson"
)

// Minimum similarity for Suggest
const suggestThreshold = 0.5

// Selection names the features to render: every feature, or only those whose
// name property equals Name.
type Selection struct {
	All  bool
	Name string
}

// SelectAll returns the selection that keeps the whole collection
func SelectAll() Selection {
	return Selection{All: true}
}

// SelectName returns the selection for a single named feature
func SelectName(name string) Selection {
	return Selection{Name: name}
}

// String returns a human readable form of the selection
func (s Selection) String() string {
	if s.All {
		return "all"
	}
	return s.Name
}

// Select returns the ordered subsequence of fc to render. For a named selection
// the match is exact and case-sensitive; an empty result is for the caller to
// report, Select never fails.
func Select(fc *geojson.FeatureCollection, sel Selection, nameProperty string) []*geojson.Feature {
	if fc == nil {
		return nil
	}
	if sel.All {
		out := make([]*geojson.Feature, len(fc.Features))
		copy(out, fc.Features)
		return out
	}

	var out []*geojson.Feature
	for _, f := range fc.Features {
		if name, ok := FeatureName(f, nameProperty); ok && name == sel.Name {
			out = append(out, f)
		}
	}
	return out
}

// FeatureName returns the string value of the name property. Features whose
// property is missing or not a string report ok=false.
func FeatureName(f *geojson.Feature, nameProperty string) (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	if nameProperty == "" {
		nameProperty = DefaultNameProperty
	}
	name, ok := f.Properties[nameProperty].(string)
	return name, ok
}

// Names lists the name property of every feature in collection order, skipping
// features without one.
func Names(fc *geojson.FeatureCollection, nameProperty string) []string {
	if fc == nil {
		return nil
	}
	names := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		if name, ok := FeatureName(f, nameProperty); ok {
			names = append(names, name)
		}
	}
	return names
}

// Suggest returns up to limit dataset names similar to name, best match first.
// It only helps report a missing target; selection itself stays exact.
func Suggest(fc *geojson.FeatureCollection, name, nameProperty string, limit int) []string {
	type scored struct {
		name  string
		score float64
	}

	var found []scored
	seen := make(map[string]bool)
	for _, candidate := range Names(fc, nameProperty) {
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		score := levenshtein.Match(strings.ToLower(name), strings.ToLower(candidate), nil)
		if score >= suggestThreshold {
			found = append(found, scored{candidate, score})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.name
	}
	return out
}
