package normalization

import "fmt"

// EnumNormalizer wraps a Normalizer with a field name for messages.
type EnumNormalizer[T comparable] struct {
	normalizer *Normalizer[T]
	enumName   string
}

// NewEnumNormalizer creates an enum normalizer.
func NewEnumNormalizer[T comparable](enumName string, values map[string]T, defaultValue T) *EnumNormalizer[T] {
	return &EnumNormalizer[T]{
		normalizer: NewNormalizer(values, defaultValue),
		enumName:   enumName,
	}
}

// Normalize converts raw to the enum value, falling back to the default.
func (e *EnumNormalizer[T]) Normalize(raw string) T {
	return e.normalizer.Normalize(raw)
}

// NormalizeWithValidation converts raw and fails on unknown input.
func (e *EnumNormalizer[T]) NormalizeWithValidation(raw string) (T, error) {
	v, err := e.normalizer.NormalizeWithError(raw)
	if err != nil {
		return v, fmt.Errorf("invalid %s: %w", e.enumName, err)
	}
	return v, nil
}

// ValidValues returns the accepted spellings.
func (e *EnumNormalizer[T]) ValidValues() []string {
	return e.normalizer.ValidKeys()
}

// Result is the outcome of a normalization that may warrant a warning.
type Result[T comparable] struct {
	Value   T
	Changed bool
	Warning string
}

// NormalizeWithWarning normalizes raw and describes any change made to it:
// case or whitespace folding, or replacement of an unknown value by the default.
func (e *EnumNormalizer[T]) NormalizeWithWarning(fieldName, raw string) Result[T] {
	v, known := e.normalizer.Lookup(raw)
	switch {
	case !known:
		v = e.normalizer.defaultValue
		return Result[T]{
			Value:   v,
			Changed: true,
			Warning: fmt.Sprintf("unknown %s %q for %s, using %v", e.enumName, raw, fieldName, v),
		}
	case Fold(raw) != raw:
		return Result[T]{
			Value:   v,
			Changed: true,
			Warning: fmt.Sprintf("normalized %s from %q to %q", fieldName, raw, Fold(raw)),
		}
	}
	return Result[T]{Value: v}
}
