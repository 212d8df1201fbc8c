/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package errors describes failures against named remote resources, such
// as a bucket that could not be deleted, so callers can report which
// resources were left behind.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ResourceError records an action that failed on a named resource.
type ResourceError struct {
	Action   string
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("failed to %s (%s): %v", e.Action, e.Resource, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Action, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *ResourceError, or nil when err is nil.
//
//	if err := cleaner.DeleteBucket(ctx, bucket); err != nil {
//	    return errors.Wrap("delete bucket", bucket, err)
//	}
func Wrap(action, resource string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Action: action, Resource: resource, Err: err}
}

// Join combines the non-nil errors into one, returning nil if there are none.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// FailedResources lists, in order and without duplicates, the resources
// named by every *ResourceError in err's tree.
func FailedResources(err error) []string {
	var out []string
	seen := map[string]bool{}

	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if re, ok := err.(*ResourceError); ok && re.Resource != "" && !seen[re.Resource] {
			seen[re.Resource] = true
			out = append(out, re.Resource)
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)

	return out
}
