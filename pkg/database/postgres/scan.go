package postgres

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

// 结构体字段映射缓存：类型 -> 列名到字段下标
var structCache sync.Map

type columnIndex map[string]int

// columnsOf 解析结构体的 db tag，未标注时使用 snake_case 字段名，"-" 表示忽略
func columnsOf(t reflect.Type) columnIndex {
	if cached, ok := structCache.Load(t); ok {
		return cached.(columnIndex)
	}

	cols := make(columnIndex, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("db")
		if name == "-" {
			continue
		}
		if name == "" {
			name = toSnakeCase(field.Name)
		}
		cols[name] = i
	}

	actual, _ := structCache.LoadOrStore(t, cols)
	return actual.(columnIndex)
}

func scanOne[T any](rows pgx.Rows) (*T, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}

	var result T
	if err := scanStruct(rows, &result); err != nil {
		return nil, err
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &result, nil
}

func scanAll[T any](rows pgx.Rows) ([]*T, error) {
	results := make([]*T, 0)
	for rows.Next() {
		var item T
		if err := scanStruct(rows, &item); err != nil {
			return nil, err
		}
		results = append(results, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanStruct 按列名把当前行扫描进结构体，结构体中没有的列被丢弃
func scanStruct(rows pgx.Rows, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.Newf("postgres: dest must be a pointer to struct, got %T", dest)
	}
	v = v.Elem()
	cols := columnsOf(v.Type())

	fds := rows.FieldDescriptions()
	targets := make([]any, len(fds))
	for i, fd := range fds {
		if idx, ok := cols[fd.Name]; ok {
			targets[i] = v.Field(idx).Addr().Interface()
			continue
		}
		var discard any
		targets[i] = &discard
	}

	return rows.Scan(targets...)
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
