package analysis

import (
	"strconv"
	"strings"

	"github.com/rlch/convextypes"
)

// Type path segments.
const (
	SegInner   = "inner"
	SegElement = "elements"
	SegKey     = "keyType"
	SegValue   = "valueType"
	SegObject  = "object"
)

// VariantSegment returns the path segment of the i'th union variant.
func VariantSegment(i int) string {
	return "variant_" + strconv.Itoa(i)
}

type objectFrame struct {
	tag  convextypes.TypeTag
	path string
}

// TypeContext tracks the type path of the node being resolved and the object
// types currently open on it. A fresh context is used for every column and
// every function parameter.
type TypeContext struct {
	path    []string
	objects []objectFrame
}

// NewTypeContext returns a context rooted at the given path segments, usually
// a table and column name.
func NewTypeContext(root ...string) *TypeContext {
	return &TypeContext{path: append([]string(nil), root...)}
}

// Path returns the current dotted type path.
func (c *TypeContext) Path() string {
	return strings.Join(c.path, ".")
}

// Depth returns the number of open object types.
func (c *TypeContext) Depth() int {
	return len(c.objects)
}

// Push extends the path by one segment. The returned func restores it and
// must be called on every exit path, typically with defer.
func (c *TypeContext) Push(seg string) (pop func()) {
	n := len(c.path)
	c.path = append(c.path, seg)

	return func() { c.path = c.path[:n] }
}

// EnterObject opens an object type at the current path. It fails with a
// *CircularReferenceError when an object with the same path is already open.
// On success the returned func closes the object and must be deferred.
func (c *TypeContext) EnterObject() (leave func(), err error) {
	current := c.Path() + "." + SegObject

	for i, frame := range c.objects {
		if frame.path != current {
			continue
		}

		chain := make([]string, 0, len(c.objects)-i+1)
		for _, f := range c.objects[i:] {
			chain = append(chain, f.path)
		}

		return nil, &convextypes.CircularReferenceError{Path: append(chain, current)}
	}

	n := len(c.objects)
	c.objects = append(c.objects, objectFrame{tag: convextypes.TagObject, path: current})

	return func() { c.objects = c.objects[:n] }, nil
}
