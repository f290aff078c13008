package assert

// NotNil panics when value is nil. It is used for wiring that can only be
// wrong because of a programming mistake.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}
