// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package catalog

import "errors"

// ErrUserNotFound is returned when the social graph has no such user.
var ErrUserNotFound = errors.New("catalog: user not found")

// ErrBookNotFound is returned when a single-book lookup finds nothing.
var ErrBookNotFound = errors.New("catalog: book not found")
