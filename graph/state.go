package graph

import "reflect"

// CloneState returns a deep copy of a state map.
// Maps, slices, arrays and pointers are copied at every depth, whatever their
// element type. Unexported struct fields, channels and funcs are shared.
func CloneState(state map[string]any) map[string]any {
	if state == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(state))
	for k, v := range state {
		result[k] = cloneValue(v)
	}
	return result
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	case map[string]any:
		return CloneState(val)
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return deepCopy(reflect.ValueOf(v), make(map[uintptr]reflect.Value)).Interface()
	}
}

// deepCopy copies src recursively. seen maps already copied pointers to their
// copies so cyclic values terminate.
func deepCopy(src reflect.Value, seen map[uintptr]reflect.Value) reflect.Value {
	switch src.Kind() {
	case reflect.Map:
		if src.IsNil() {
			return src
		}
		dst := reflect.MakeMapWithSize(src.Type(), src.Len())
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), deepCopy(iter.Value(), seen))
		}
		return dst
	case reflect.Slice:
		if src.IsNil() {
			return src
		}
		dst := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			dst.Index(i).Set(deepCopy(src.Index(i), seen))
		}
		return dst
	case reflect.Array:
		dst := reflect.New(src.Type()).Elem()
		for i := range src.Len() {
			dst.Index(i).Set(deepCopy(src.Index(i), seen))
		}
		return dst
	case reflect.Pointer:
		if src.IsNil() {
			return src
		}
		if dst, ok := seen[src.Pointer()]; ok {
			return dst
		}
		dst := reflect.New(src.Type().Elem())
		seen[src.Pointer()] = dst
		dst.Elem().Set(deepCopy(src.Elem(), seen))
		return dst
	case reflect.Interface:
		if src.IsNil() {
			return src
		}
		dst := reflect.New(src.Type()).Elem()
		dst.Set(deepCopy(src.Elem(), seen))
		return dst
	case reflect.Struct:
		dst := reflect.New(src.Type()).Elem()
		dst.Set(src)
		for i := range src.NumField() {
			if field := dst.Field(i); field.CanSet() {
				field.Set(deepCopy(src.Field(i), seen))
			}
		}
		return dst
	default:
		return src
	}
}

// MergeState applies update to state in place, overwriting on key.
// Nested values are replaced wholesale, never merged.
func MergeState(state, update map[string]any) {
	for k, v := range update {
		state[k] = cloneValue(v)
	}
}
