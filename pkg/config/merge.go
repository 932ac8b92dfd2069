package config

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// MergeConfig 将 src 中的非零值覆盖到 dst 上并返回 dst
//   - dst、src 均为 nil 时返回 ErrNilConfig
//   - 任一为 nil 时返回另一个
//   - 零值（false、0、""、空 map/slice、nil 指针）不会覆盖 dst
//
// 典型用法：MergeConfig(DefaultConfig(), userCfg)
func MergeConfig[T any](dst, src *T) (*T, error) {
	switch {
	case dst == nil && src == nil:
		return nil, ErrNilConfig
	case dst == nil:
		return src, nil
	case src == nil:
		return dst, nil
	}

	if err := overlay(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem()); err != nil {
		return nil, errors.Mark(err, ErrMergeFailed)
	}
	return dst, nil
}

func overlay(dst, src reflect.Value) error {
	if !src.IsValid() || src.IsZero() || isEmptyContainer(src) {
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		t := src.Type()
		for i := 0; i < src.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			target := dst.FieldByName(field.Name)
			if !target.IsValid() || !target.CanSet() {
				continue
			}
			if err := overlay(target, src.Field(i)); err != nil {
				return errors.Wrapf(err, "field %s", field.Name)
			}
		}
	case reflect.Map:
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(dst.Type()))
		}
		iter := src.MapRange()
		for iter.Next() {
			existing := dst.MapIndex(iter.Key())
			if !existing.IsValid() {
				dst.SetMapIndex(iter.Key(), iter.Value())
				continue
			}
			merged := reflect.New(dst.Type().Elem()).Elem()
			merged.Set(existing)
			if err := overlay(merged, iter.Value()); err != nil {
				return err
			}
			dst.SetMapIndex(iter.Key(), merged)
		}
	case reflect.Ptr:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return overlay(dst.Elem(), src.Elem())
	default:
		// 基本类型与切片整体覆盖
		if !dst.CanSet() {
			return nil
		}
		if src.Type() != dst.Type() {
			return errors.Newf("type mismatch: %s vs %s", src.Type(), dst.Type())
		}
		dst.Set(src)
	}
	return nil
}

func isEmptyContainer(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return false
}
