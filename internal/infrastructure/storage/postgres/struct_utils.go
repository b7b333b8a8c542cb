package postgres

import (
	"reflect"
	"slices"
	"sync"
)

// columnMeta is the cached "db" tag layout of one struct type.
type columnMeta struct {
	// index paths into the struct; embedded fields are flattened
	paths   [][]int
	columns []string
}

var columnCache sync.Map // reflect.Type -> *columnMeta

func metaFor(t reflect.Type) *columnMeta {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.(*columnMeta)
	}
	meta := &columnMeta{}
	if t.Kind() == reflect.Struct {
		collectColumns(t, nil, meta)
	}
	actual, _ := columnCache.LoadOrStore(t, meta)
	return actual.(*columnMeta)
}

func collectColumns(t reflect.Type, prefix []int, meta *columnMeta) {
	for i := range t.NumField() {
		field := t.Field(i)
		path := append(slices.Clone(prefix), i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectColumns(field.Type, path, meta)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.paths = append(meta.paths, path)
		meta.columns = append(meta.columns, tag)
	}
}

// ExtractDBColumns lists the "db" columns of T in field order, embedded structs first
// where they are declared first.
//
//	ExtractDBColumns[category.Category]()
//	// ["id", "owner_id", "created_at", "updated_at", "name", "description"]
func ExtractDBColumns[T any]() []string {
	return slices.Clone(metaFor(reflect.TypeFor[T]()).columns)
}

// StructToMap converts a struct (or pointer to one) to a column map.
// Fields without a tag or tagged "-" are skipped.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	meta := metaFor(rv.Type())
	res := make(map[string]any, len(meta.columns))
	for i, path := range meta.paths {
		res[meta.columns[i]] = rv.FieldByIndex(path).Interface()
	}
	return res
}

// pick keeps only the listed columns of data, skipping excluded ones.
func pick(data map[string]any, columns []string, exclude ...string) map[string]any {
	out := make(map[string]any, len(columns))
	for _, col := range columns {
		if slices.Contains(exclude, col) {
			continue
		}
		if v, ok := data[col]; ok {
			out[col] = v
		}
	}
	return out
}
