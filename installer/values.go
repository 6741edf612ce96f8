package installer

import "fmt"

// toStringMap accepts both flavors of decoded YAML mappings. A nil
// value yields a nil map, anything that isn't a mapping is an error.
func toStringMap(v interface{}) (map[string]interface{}, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return copyMap(tv), nil
	case map[interface{}]interface{}:
		res := make(map[string]interface{}, len(tv))
		for k, vv := range tv {
			ks, ok := k.(string)
			if !ok {
				return nil, scriptingError("Game config key must be a string", k)
			}
			res[ks] = copyValue(vv)
		}
		return res, nil
	default:
		return nil, scriptingError("Expected a mapping", fmt.Sprintf("%T", v))
	}
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	res := make(map[string]interface{}, len(m))
	for k, v := range m {
		res[k] = copyValue(v)
	}
	return res
}

func copyValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case map[string]interface{}:
		return copyMap(tv)
	case map[interface{}]interface{}:
		res := make(map[interface{}]interface{}, len(tv))
		for k, vv := range tv {
			res[k] = copyValue(vv)
		}
		return res
	case []interface{}:
		res := make([]interface{}, len(tv))
		for i, vv := range tv {
			res[i] = copyValue(vv)
		}
		return res
	case []string:
		return append([]string(nil), tv...)
	default:
		return v
	}
}
