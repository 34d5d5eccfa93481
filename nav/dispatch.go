// Copyright 2026 Gaurav Gosain
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nav

// Navigator is a navigation primitive supplied by the environment
// (an HTTP redirect, a header writer, a plain resolver...).
// Options of type O are opaque to this package.
type Navigator[O, R any] interface {
	Navigate(url string, opts O) (R, error)
}

// NavigatorFunc allows an ordinary function to be used as a Navigator.
type NavigatorFunc[O, R any] func(url string, opts O) (R, error)

func (f NavigatorFunc[O, R]) Navigate(url string, opts O) (R, error) {
	return f(url, opts)
}

// Dispatcher prefixes application-relative URLs with a base path
// and hands them over to a Navigator. It keeps no state between
// calls so a single instance can be shared by any number of
// goroutines.
type Dispatcher[O, R any] struct {
	base      BasePath
	navigator Navigator[O, R]
}

// Base returns the base path the dispatcher was created with.
func (d *Dispatcher[O, R]) Base() BasePath {
	return d.base
}

// Resolve returns the URL which Dispatch would pass to the navigator.
func (d *Dispatcher[O, R]) Resolve(url string) string {
	return d.base.Apply(url)
}

// Dispatch navigates to url, possibly rewritten by the base path.
// Options are passed as they are and the navigator's result
// (including its error) is returned unchanged.
func (d *Dispatcher[O, R]) Dispatch(url string, opts O) (R, error) {
	return d.navigator.Navigate(d.base.Apply(url), opts)
}

func NewDispatcher[O, R any](base BasePath, navigator Navigator[O, R]) *Dispatcher[O, R] {
	return &Dispatcher[O, R]{
		base:      base,
		navigator: navigator,
	}
}
