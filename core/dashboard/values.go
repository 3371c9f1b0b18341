package dashboard

// Accessors for decoded JSON objects. Missing or mistyped keys give zero values.

func objectField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func optionalStringField(m map[string]any, key string) *string {
	v, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func stringsField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return []string{}
	}
}

func objectsField(m map[string]any, key string) []map[string]any {
	switch v := m[key].(type) {
	case []map[string]any:
		return v
	case []any:
		result := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				result = append(result, obj)
			}
		}
		return result
	default:
		return nil
	}
}

// literalData returns the data of a literal function, nil for anything else.
func literalData(v any) any {
	fn, ok := v.(map[string]any)
	if !ok || stringField(fn, "functionName") != literalFunctionName {
		return nil
	}
	return objectField(fn, "functionArguments")["data"]
}

func literal(data any) map[string]any {
	return map[string]any{
		"functionName":      literalFunctionName,
		"functionArguments": map[string]any{"data": data},
	}
}

func stringPtr(s string) *string {
	return &s
}
