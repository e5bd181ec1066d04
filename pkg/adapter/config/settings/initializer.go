// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package settings

// Nil2Zero makes a nil *t point to a new zero value of T.
// A non-nil *t is left untouched.
func Nil2Zero[T any](t **T) {
	if *t == nil {
		*t = new(T)
	}
}

// OverwriteNil makes a nil *dst point to a copy of *src, so default
// values can be filled without sharing their memory. Nothing is done
// if *dst is not nil or src is nil.
func OverwriteNil[T any](dst **T, src *T) {
	if *dst != nil || src == nil {
		return
	}
	t := *src
	*dst = &t
}
