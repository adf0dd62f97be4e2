package postgres

import (
	"reflect"
	"sync"
)

// columnMeta is the cached db-tag layout of one struct type.
type columnMeta struct {
	// columns in declaration order, embedded structs flattened in place
	columns []string
	// index paths for reflect.Value.FieldByIndex, parallel to columns
	paths [][]int
}

var columnCache sync.Map // map[reflect.Type]*columnMeta

func metaFor(t reflect.Type) *columnMeta {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.(*columnMeta)
	}

	meta := &columnMeta{}
	if t.Kind() == reflect.Struct {
		collectColumns(t, nil, meta)
	}
	columnCache.Store(t, meta)
	return meta
}

func collectColumns(t reflect.Type, prefix []int, meta *columnMeta) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectColumns(ft, path, meta)
			}
			continue
		}

		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		meta.columns = append(meta.columns, tag)
		meta.paths = append(meta.paths, path)
	}
}

// ExtractDBColumns returns the column names declared by "db" tags on T,
// including those of embedded structs such as entity.Base.
//
//	cols := ExtractDBColumns[ledger.Expense]()
//	// ["id", "version", "created_at", "updated_at", "project_id", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metaFor(reflect.TypeOf(zero))
	return append([]string(nil), meta.columns...)
}

// StructToMap converts a struct (or pointer to struct) to column → value using "db" tags.
// Reflection metadata is computed once per type and cached.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
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
	for i, col := range meta.columns {
		res[col] = rv.FieldByIndex(meta.paths[i]).Interface()
	}
	return res
}
