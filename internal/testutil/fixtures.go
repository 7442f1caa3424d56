package testutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Fixture bounds. The shapes are deliberately coarse so that tests can reason
// about containment and bounds without real coastlines.
var (
	IndiaBound  = orb.Bound{Min: orb.Point{68.1, 6.7}, Max: orb.Point{97.4, 35.5}}
	NepalBound  = orb.Bound{Min: orb.Point{80.0, 26.3}, Max: orb.Point{88.2, 30.4}}
	FranceBound = orb.Bound{Min: orb.Point{-5.1, 41.3}, Max: orb.Point{9.6, 51.1}}
	BrazilBound = orb.Bound{Min: orb.Point{-73.9, -33.7}, Max: orb.Point{-34.8, 5.2}}
)

// Box returns a closed polygon covering b
func Box(b orb.Bound) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{b.Min.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Min.Lat()},
		{b.Max.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Max.Lat()},
		{b.Min.Lon(), b.Min.Lat()},
	}}
}

// Country builds a feature with a name property and a box geometry
func Country(name string, b orb.Bound) *geojson.Feature {
	f := geojson.NewFeature(Box(b))
	f.Properties["name"] = name
	return f
}

// WorldCollection returns a small world: India, Nepal (drawn on top of India),
// France as a multipolygon with Corsica, Brazil, one feature with a numeric
// name and one without properties.
func WorldCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(Country("India", IndiaBound))
	fc.Append(Country("Nepal", NepalBound))

	corsica := orb.Bound{Min: orb.Point{8.5, 41.3}, Max: orb.Point{9.6, 43.0}}
	mainland := orb.Bound{Min: orb.Point{-5.1, 42.3}, Max: orb.Point{8.2, 51.1}}
	france := geojson.NewFeature(orb.MultiPolygon{Box(mainland), Box(corsica)})
	france.Properties["name"] = "France"
	fc.Append(france)

	fc.Append(Country("Brazil", BrazilBound))

	numeric := geojson.NewFeature(Box(orb.Bound{Min: orb.Point{10, -10}, Max: orb.Point{12, -8}}))
	numeric.Properties["name"] = 42
	fc.Append(numeric)

	bare := geojson.NewFeature(Box(orb.Bound{Min: orb.Point{20, -10}, Max: orb.Point{22, -8}}))
	bare.Properties = nil
	fc.Append(bare)

	return fc
}

// WorldGeoJSON returns WorldCollection encoded as GeoJSON
func WorldGeoJSON() []byte {
	data, err := json.Marshal(WorldCollection())
	if err != nil {
		panic(fmt.Sprintf("marshal fixture: %v", err))
	}
	return data
}

// CollectionJSON encodes the given features as a FeatureCollection
func CollectionJSON(features ...*geojson.Feature) []byte {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	data, err := json.Marshal(fc)
	if err != nil {
		panic(fmt.Sprintf("marshal fixture: %v", err))
	}
	return data
}

// CountryNames lists the string names in WorldCollection
func CountryNames() []string {
	return []string{"India", "Nepal", "France", "Brazil"}
}

// DatasetWithProperty rewrites the fixture so names live under another key,
// e.g. "ADMIN" as in Natural Earth derived datasets.
func DatasetWithProperty(key string) []byte {
	return []byte(strings.ReplaceAll(string(WorldGeoJSON()), `"name":`, fmt.Sprintf("%q:", key)))
}
