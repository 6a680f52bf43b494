package a

import "errors"

type Registry struct {
	names []string
}

var ErrMissing = errors.New("missing")

var limit = 10

var defaults = Registry{}

var cache = map[string]int{} // want `package-level variable cache holds a map`

var queue = make(chan int, 1) // want `package-level variable queue holds a channel`

var names []string // want `package-level variable names holds a slice`

var current = &Registry{} // want `package-level variable current holds a pointer`

var (
	first, second []int // want `package-level variable first holds a slice` `package-level variable second holds a slice`
)

var _ = map[string]bool{}

func Use() int {
	local := map[string]int{}
	return len(local) + limit + len(defaults.names) + len(cache) + len(queue) + len(names) + len(current.names) + len(first) + len(second)
}
