// Package must provides helpers to panic on errors that can only happen due to programming errors,
// e.g. when building static descriptors at initialization.
package must

import "github.com/pkg/errors"

// M panics with err (with a stack trace) if it is not nil.
func M(err error) {
	if err != nil {
		panic(errors.WithStack(err))
	}
}

// M1 returns v if err is nil, or panics with err otherwise.
func M1[T any](v T, err error) T {
	M(err)
	return v
}
