package shape

import "sort"

// FieldSpec declares one key of an object.
type FieldSpec struct {
	Name     string
	Schema   Schema
	Required bool
}

// Field declares a required key.
func Field(name string, s Schema) FieldSpec { return FieldSpec{Name: name, Schema: s, Required: true} }

// Optional declares a key that may be absent. A present null still has to match s.
func Optional(name string, s Schema) FieldSpec { return FieldSpec{Name: name, Schema: s} }

// ObjectSchema validates a JSON object with a fixed set of keys.
type ObjectSchema struct {
	fields []FieldSpec
	known  map[string]int
	rest   Schema
}

// Object builds an object schema. Keys not declared are dropped from the output.
func Object(fields ...FieldSpec) *ObjectSchema {
	known := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := known[f.Name]; dup {
			panic("shape: duplicate field " + f.Name)
		}
		known[f.Name] = i
	}
	return &ObjectSchema{fields: fields, known: known}
}

// Catchall keeps undeclared keys and validates each against rest.
func (o *ObjectSchema) Catchall(rest Schema) *ObjectSchema {
	cp := *o
	cp.rest = rest
	return &cp
}

// Fields returns the declared fields in declaration order.
func (o *ObjectSchema) Fields() []FieldSpec { return o.fields }

// Lookup returns the declared field called name.
func (o *ObjectSchema) Lookup(name string) (FieldSpec, bool) {
	i, ok := o.known[name]
	if !ok {
		return FieldSpec{}, false
	}
	return o.fields[i], true
}

func (o *ObjectSchema) parse(path string, v any, c *checker) any {
	m, ok := v.(map[string]any)
	if !ok {
		c.ve.add(path, CodeType, "object", kindOf(v))
		return nil
	}
	out := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		fv, present := m[f.Name]
		if !present {
			if f.Required {
				c.ve.add(join(path, f.Name), CodeRequired, describeKind(f.Schema), "missing")
			}
			continue
		}
		out[f.Name] = f.Schema.parse(join(path, f.Name), fv, c)
	}
	if o.rest != nil {
		// sorted so issue order is stable
		keys := make([]string, 0, len(m))
		for k := range m {
			if _, declared := o.known[k]; !declared {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = o.rest.parse(join(path, k), m[k], c)
		}
	}
	return out
}

func (o *ObjectSchema) describe() map[string]any {
	props := make(map[string]any, len(o.fields))
	required := make([]any, 0, len(o.fields))
	for _, f := range o.fields {
		props[f.Name] = f.Schema.describe()
		if f.Required {
			required = append(required, f.Name)
		}
	}
	d := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		d["required"] = required
	}
	if o.rest != nil {
		d["additionalProperties"] = o.rest.describe()
	}
	return d
}

// describeKind is the expected-kind text for a missing key.
func describeKind(s Schema) string {
	d := s.describe()
	if t, ok := d["type"].(string); ok {
		return t
	}
	if _, ok := d["anyOf"]; ok {
		if inner, ok := s.(nullableSchema); ok {
			return describeKind(inner.inner) + " or null"
		}
	}
	return "value"
}

type arraySchema struct{ elem Schema }

// Array accepts a list whose every element matches elem.
func Array(elem Schema) Schema { return arraySchema{elem: elem} }

func (s arraySchema) parse(path string, v any, c *checker) any {
	list, ok := v.([]any)
	if !ok {
		c.ve.add(path, CodeType, "array", kindOf(v))
		return nil
	}
	out := make([]any, len(list))
	for i, item := range list {
		out[i] = s.elem.parse(index(path, i), item, c)
	}
	return out
}

func (s arraySchema) describe() map[string]any {
	return map[string]any{"type": "array", "items": s.elem.describe()}
}

type recordSchema struct{ elem Schema }

// Record accepts an object with arbitrary keys whose values match elem.
func Record(elem Schema) Schema { return recordSchema{elem: elem} }

func (s recordSchema) parse(path string, v any, c *checker) any {
	m, ok := v.(map[string]any)
	if !ok {
		c.ve.add(path, CodeType, "object", kindOf(v))
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(m))
	for _, k := range keys {
		out[k] = s.elem.parse(join(path, k), m[k], c)
	}
	return out
}

func (s recordSchema) describe() map[string]any {
	return map[string]any{"type": "object", "additionalProperties": s.elem.describe()}
}
