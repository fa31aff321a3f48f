// Package debug gates internal consistency checks behind the "debug" build tag.
package debug

// Assert does nothing unless the debug build tag is set.
// With the tag, it panics if condition is false.
func Assert(condition bool, message ...string) {
	if !Debug {
		return
	}
	if !condition {
		if len(message) > 0 {
			panic(message[0])
		}
		panic("assertion failed")
	}
}
