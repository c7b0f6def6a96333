package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns returns the "db" tags of T's fields in declaration order,
// descending into embedded structs. Repositories call it once at construction.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsOf(field.Type)...)
			continue
		}
		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, tag)
		}
	}
	return cols
}

// fieldPaths caches, per struct type, the field index path of every db column.
var fieldPaths sync.Map // map[reflect.Type]map[string][]int

func pathsOf(t reflect.Type) map[string][]int {
	if cached, ok := fieldPaths.Load(t); ok {
		return cached.(map[string][]int)
	}

	paths := make(map[string][]int)
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			path := append(append([]int(nil), prefix...), i)
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				walk(field.Type, path)
				continue
			}
			if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
				paths[tag] = path
			}
		}
	}
	walk(t, nil)

	fieldPaths.Store(t, paths)
	return paths
}

// RowValues returns the values of v's fields for the given columns, in column order.
// Columns without a matching db tag yield nil.
func RowValues(v any, columns []string) []any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	paths := pathsOf(rv.Type())
	out := make([]any, len(columns))
	for i, col := range columns {
		if path, ok := paths[col]; ok {
			out[i] = rv.FieldByIndex(path).Interface()
		}
	}
	return out
}
