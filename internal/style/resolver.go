package style

import (
	"github.com/paulmach/orb/geojson"
)

// Resolver decides the base style of a feature. Implementations must be pure
// functions of the feature's properties: hover state never leaks in.
type Resolver interface {
	Resolve(f *geojson.Feature) Style
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(f *geojson.Feature) Style

// Resolve calls fn(f)
func (fn ResolverFunc) Resolve(f *geojson.Feature) Style {
	return fn(f)
}

// Constant gives every feature the same style
type Constant struct {
	Style Style
}

// Resolve returns the constant style
func (c Constant) Resolve(*geojson.Feature) Style {
	return c.Style
}

// Conditional emphasizes the feature whose Property equals Match and gives
// every other feature the Background style.
type Conditional struct {
	Property   string
	Match      string
	Emphasis   Style
	Background Style
}

// Resolve picks Emphasis or Background from the feature's properties
func (c Conditional) Resolve(f *geojson.Feature) Style {
	if f == nil || f.Properties == nil {
		return c.Background
	}
	prop := c.Property
	if prop == "" {
		prop = "name"
	}
	if name, ok := f.Properties[prop].(string); ok && name == c.Match {
		return c.Emphasis
	}
	return c.Background
}
