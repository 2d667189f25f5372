package lint

// GetIntOption extracts an int option, handling float64 from JSON.
func GetIntOption(opts map[string]any, key string, defaultVal int) int {
	if opts == nil {
		return defaultVal
	}
	v, ok := opts[key]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return defaultVal
	}
}

// GetStringOption extracts a string option.
func GetStringOption(opts map[string]any, key string, defaultVal string) string {
	if opts == nil {
		return defaultVal
	}
	if s, ok := opts[key].(string); ok {
		return s
	}
	return defaultVal
}

// GetBoolOption extracts a bool option.
func GetBoolOption(opts map[string]any, key string, defaultVal bool) bool {
	if opts == nil {
		return defaultVal
	}
	if b, ok := opts[key].(bool); ok {
		return b
	}
	return defaultVal
}
