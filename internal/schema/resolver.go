package schema

import (
	"context"
	"reflect"
	"strings"
	"sync"
)

// PropertyResolver returns the resolver used for fields without one. It
// projects the property called name from the parent value:
//   - map[string]any: the entry keyed name.
//   - struct or pointer to struct: the exported field whose json tag is name,
//     or failing that the field whose name matches case-insensitively.
//
// Anything else, and missing properties, resolve to null.
func PropertyResolver(name string) Resolver {
	return propertyResolver(name)
}

type propertyResolver string

func (p propertyResolver) Resolve(_ context.Context, source any, _ map[string]any) (any, error) {
	return Property(source, string(p)), nil
}

// Property reads the named property of source as PropertyResolver does.
func Property(source any, name string) any {
	if source == nil {
		return nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[name]
	}
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	fields := structFields(rv.Type())
	idx, ok := fields[name]
	if !ok {
		if idx, ok = fields[strings.ToLower(name)]; !ok {
			return nil
		}
	}
	return rv.Field(idx).Interface()
}

var fieldIndexCache sync.Map // reflect.Type -> map[string]int

func structFields(t reflect.Type) map[string]int {
	if v, ok := fieldIndexCache.Load(t); ok {
		return v.(map[string]int)
	}
	byTag := make(map[string]int)
	byName := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; tag != "" && tag != "-" {
			byTag[tag] = i
		}
		byName[strings.ToLower(f.Name)] = i
	}
	index := make(map[string]int, len(byTag)+len(byName))
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		// json tags win over field names
		lower := strings.ToLower(f.Name)
		if _, taken := byTag[lower]; !taken {
			index[lower] = byName[lower]
		}
	}
	for tag, i := range byTag {
		index[tag] = i
	}
	v, _ := fieldIndexCache.LoadOrStore(t, index)
	return v.(map[string]int)
}
