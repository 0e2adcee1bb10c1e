package shape

import "sort"

// UnionSchema is a discriminated union of object schemas keyed by one tag field.
// Dispatch is a map lookup on the tag value; only the selected variant is checked.
type UnionSchema struct {
	tag      string
	variants map[string]*ObjectSchema
}

// Union builds a tagged union. Every variant must declare tag as a required
// Literal field; a variant without one, or two variants sharing a value, panics.
func Union(tag string, variants ...*ObjectSchema) *UnionSchema {
	u := &UnionSchema{tag: tag, variants: make(map[string]*ObjectSchema, len(variants))}
	for _, v := range variants {
		f, ok := v.Lookup(tag)
		if !ok || !f.Required {
			panic("shape: union variant without required tag field " + tag)
		}
		lit, ok := f.Schema.(literalSchema)
		if !ok {
			panic("shape: union tag field " + tag + " must be a Literal")
		}
		if _, dup := u.variants[lit.value]; dup {
			panic("shape: duplicate union tag " + lit.value)
		}
		u.variants[lit.value] = v
	}
	return u
}

// Tag is the discriminator field name.
func (u *UnionSchema) Tag() string { return u.tag }

// Tags lists the known discriminator values, sorted.
func (u *UnionSchema) Tags() []string {
	out := make([]string, 0, len(u.variants))
	for k := range u.variants {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Variant returns the object schema registered for tag.
func (u *UnionSchema) Variant(tag string) (*ObjectSchema, bool) {
	v, ok := u.variants[tag]
	return v, ok
}

func (u *UnionSchema) parse(path string, v any, c *checker) any {
	m, ok := v.(map[string]any)
	if !ok {
		c.ve.add(path, CodeType, "object", kindOf(v))
		return nil
	}
	tagPath := join(path, u.tag)
	raw, present := m[u.tag]
	if !present {
		c.ve.add(tagPath, CodeRequired, "string", "missing")
		return nil
	}
	tag, ok := raw.(string)
	if !ok {
		c.ve.add(tagPath, CodeType, "string", kindOf(raw))
		return nil
	}
	variant, ok := u.variants[tag]
	if !ok {
		if c.unknown == nil {
			c.unknown = &UnknownVariantError{Path: tagPath, Field: u.tag, Value: tag}
		}
		return nil
	}
	return variant.parse(path, m, c)
}

func (u *UnionSchema) describe() map[string]any {
	tags := u.Tags()
	one := make([]any, 0, len(tags))
	for _, t := range tags {
		one = append(one, u.variants[t].describe())
	}
	return map[string]any{
		"type":     "object",
		"required": []any{u.tag},
		"oneOf":    one,
	}
}
