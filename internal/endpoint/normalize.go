package endpoint

import (
	"encoding/json"
	"fmt"
	"math"
)

// Shape is the call shape of a dispatcher invocation.
type Shape int

const (
	// ShapeEmpty: the url argument is falsy, options is used as the descriptor
	ShapeEmpty Shape = iota
	// ShapeDescriptor: the url argument is itself a descriptor object
	ShapeDescriptor
	// ShapePathWithOptions: url is a path, options carries path, params or body
	ShapePathWithOptions
	// ShapePathWithBody: url is a path, options is the raw request body
	ShapePathWithBody
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeDescriptor:
		return "descriptor"
	case ShapePathWithOptions:
		return "path+options"
	case ShapePathWithBody:
		return "path+body"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Classify reports which call shape the pair (url, options) has.
//
// Precedence: a falsy url always yields ShapeEmpty, an object url always wins
// over options, and descriptor keys in options win over treating options as
// a raw body.
func Classify(url, options any) Shape {
	switch {
	case !truthy(url):
		return ShapeEmpty
	case isObject(url):
		return ShapeDescriptor
	case hasDescriptorKeys(options):
		return ShapePathWithOptions
	default:
		return ShapePathWithBody
	}
}

// Normalize resolves the arguments of a verb dispatcher into the canonical
// Descriptor.
//
//   - falsy url: options is the descriptor (anything but an object yields
//     the empty descriptor)
//   - object url: url is the descriptor, options is ignored
//   - path url with descriptor-shaped options: options with Path set to url
//   - path url otherwise: {Path: url, Body: options}
//
// A nil options never produces a body.
func Normalize(url, options any) Descriptor {
	switch Classify(url, options) {
	case ShapeEmpty:
		return toDescriptor(options)
	case ShapeDescriptor:
		return toDescriptor(url)
	case ShapePathWithOptions:
		d := toDescriptor(options)
		d.Path = pathOf(url)
		return d
	default:
		d := Descriptor{Path: pathOf(url)}
		if !isNil(options) {
			d.Body = options
		}
		return d
	}
}

// isObject reports whether v is a plain key/value object. Slices, strings,
// numbers, booleans and nil are not objects.
func isObject(v any) bool {
	switch o := v.(type) {
	case Descriptor:
		return true
	case *Descriptor:
		return o != nil
	case map[string]any:
		return o != nil
	case Params:
		return o != nil
	case Result:
		return o != nil
	default:
		return false
	}
}

// hasDescriptorKeys reports whether options carries a truthy path, params
// or body.
func hasDescriptorKeys(options any) bool {
	switch o := options.(type) {
	case Descriptor:
		return o.Path != "" || truthy(o.Params) || truthy(o.Body)
	case *Descriptor:
		return o != nil && (o.Path != "" || truthy(o.Params) || truthy(o.Body))
	case map[string]any:
		return truthy(o["path"]) || truthy(o["params"]) || truthy(o["body"])
	case Params:
		return truthy(o["path"]) || truthy(o["params"]) || truthy(o["body"])
	case Result:
		return truthy(o["path"]) || truthy(o["params"]) || truthy(o["body"])
	default:
		return false
	}
}

// truthy follows the usual dynamic-language notion: nil, false, "", zero
// and NaN are falsy, every object and slice (even empty) is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case uint:
		return t != 0
	case uint64:
		return t != 0
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	case *Descriptor:
		return t != nil
	case map[string]any:
		return t != nil
	case Params:
		return t != nil
	case Result:
		return t != nil
	case []any:
		return t != nil
	case []string:
		return t != nil
	default:
		return true
	}
}

func isNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *Descriptor:
		return t == nil
	case map[string]any:
		return t == nil
	case Params:
		return t == nil
	case []any:
		return t == nil
	default:
		return false
	}
}

func pathOf(url any) string {
	if s, ok := url.(string); ok {
		return s
	}
	return fmt.Sprint(url)
}

// toDescriptor reads a descriptor out of an object. Params that are not an
// object are dropped.
func toDescriptor(v any) Descriptor {
	switch o := v.(type) {
	case Descriptor:
		return o
	case *Descriptor:
		if o == nil {
			return Descriptor{}
		}
		return *o
	case map[string]any:
		return descriptorFromMap(o)
	case Params:
		return descriptorFromMap(o)
	case Result:
		return descriptorFromMap(o)
	default:
		return Descriptor{}
	}
}

func descriptorFromMap(m map[string]any) Descriptor {
	var d Descriptor
	if p, ok := m["path"]; ok && truthy(p) {
		d.Path = pathOf(p)
	}
	switch p := m["params"].(type) {
	case map[string]any:
		d.Params = Params(p)
	case Params:
		d.Params = p
	}
	if b, ok := m["body"]; ok {
		d.Body = b
	}
	return d
}
