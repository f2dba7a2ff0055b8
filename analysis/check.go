package analysis

import (
	"github.com/rlch/convextypes"
)

// CheckType validates a completed TypeNode built outside the resolver, for
// example by hand or by decoding. It applies the resolver's rules: every tag
// must be in the vocabulary, optionals need an inner type, and no object may
// be reached again while it is open. Node graphs that contain a node inside
// itself are rejected too.
func CheckType(t *convextypes.TypeNode, root ...string) error {
	c := &checker{ctx: NewTypeContext(root...), open: make(map[*convextypes.TypeNode]string)}

	return c.check(t)
}

type checker struct {
	ctx  *TypeContext
	open map[*convextypes.TypeNode]string
}

func (c *checker) check(t *convextypes.TypeNode) error {
	if t == nil {
		return &convextypes.SchemaError{Context: c.ctx.Path(), Details: "missing type"}
	}

	if !t.Tag.IsValid() {
		return &convextypes.TypeError{Found: string(t.Tag), Valid: convextypes.ValidTypes()}
	}

	// A node that contains itself would never finish rendering.
	if first, ok := c.open[t]; ok {
		return &convextypes.CircularReferenceError{Path: []string{first, c.ctx.Path()}}
	}

	c.open[t] = c.ctx.Path()
	defer delete(c.open, t)

	switch t.Tag {
	case convextypes.TagOptional:
		if t.Inner == nil {
			return &convextypes.SchemaError{Context: c.ctx.Path(), Details: "optional type must have an inner type"}
		}

		return c.slot(t.Inner, SegInner)
	case convextypes.TagArray:
		if t.Element == nil {
			return nil
		}

		return c.slot(t.Element, SegElement)
	case convextypes.TagRecord:
		if t.Key != nil {
			if err := c.slot(t.Key, SegKey); err != nil {
				return err
			}
		}

		if t.Value != nil {
			return c.slot(t.Value, SegValue)
		}
	case convextypes.TagUnion:
		for i, v := range t.Variants {
			if err := c.slot(v, VariantSegment(i)); err != nil {
				return err
			}
		}
	case convextypes.TagObject:
		return c.object(t)
	}

	return nil
}

func (c *checker) object(t *convextypes.TypeNode) error {
	leave, err := c.ctx.EnterObject()
	if err != nil {
		return err
	}
	defer leave()

	for _, f := range t.Fields {
		if f == nil || f.Name == "" {
			return &convextypes.SchemaError{Context: c.ctx.Path(), Details: "invalid object property name"}
		}

		if err := c.slot(f.Type, f.Name); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) slot(t *convextypes.TypeNode, seg string) error {
	pop := c.ctx.Push(seg)
	defer pop()

	return c.check(t)
}
