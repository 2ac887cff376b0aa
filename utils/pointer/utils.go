package pointer

// NotNull dereferences source, falling back to defaultValue when it is nil.
func NotNull[T any](source *T, defaultValue T) T {
	if source != nil {
		return *source
	}
	return defaultValue
}

// Of returns a pointer to a copy of value.
func Of[T any](value T) *T {
	return &value
}

