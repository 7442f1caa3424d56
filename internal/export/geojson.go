package export

import (
	"fmt"

	"github.com/borderview/borderview-go/internal/layer"
	"github.com/mitchellh/copystructure"
	"github.com/paulmach/orb/geojson"
)

// Simplestyle property names written on exported features
const (
	PropStroke      = "stroke"
	PropStrokeWidth = "stroke-width"
	PropFill        = "fill"
	PropFillOpacity = "fill-opacity"
)

// LayerCollection builds a feature collection of the layer's shapes in draw
// order. Each feature carries a copy of the source properties plus the
// simplestyle properties of its base style; the source features are not
// modified.
func LayerCollection(l *layer.Layer) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if l == nil {
		return fc
	}

	for _, s := range l.DrawOrder() {
		src := s.Feature
		if src == nil || src.Geometry == nil {
			continue
		}

		f := geojson.NewFeature(src.Geometry)
		f.ID = src.ID
		f.Properties = copyProperties(src.Properties)

		st := s.BaseStyle()
		f.Properties[PropStroke] = st.BorderColor
		f.Properties[PropStrokeWidth] = st.BorderWeight
		f.Properties[PropFill] = st.FillColor
		f.Properties[PropFillOpacity] = st.FillOpacity

		fc.Append(f)
	}
	return fc
}

// copyProperties deep-copies props so nested values can be changed without
// touching the source feature
func copyProperties(props geojson.Properties) geojson.Properties {
	if props == nil {
		return geojson.Properties{}
	}
	copied, err := copystructure.Copy(props)
	if err != nil {
		out := make(geojson.Properties, len(props))
		for k, v := range props {
			out[k] = v
		}
		return out
	}
	return copied.(geojson.Properties)
}

// ExportLayerGeoJSON writes the layer to a timestamped file in directory
func ExportLayerGeoJSON(l *layer.Layer, directory string) (string, error) {
	filename := GenerateFilename("borderview_boundaries", "geojson", directory)

	if err := ExportLayerGeoJSONToFile(l, filename); err != nil {
		return "", err
	}

	return filename, nil
}

// ExportLayerGeoJSONToFile writes the layer to filename
func ExportLayerGeoJSONToFile(l *layer.Layer, filename string) error {
	data, err := LayerCollection(l).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	return writeFile(filename, data)
}
