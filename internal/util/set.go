package util

import "slices"

// A Set represents a set of strings. The zero value is an empty set,
// ready to use.
type Set map[string]struct{}

// NewSet returns a Set that contains all of elems but no other elements.
func NewSet(elems ...string) Set {
	set := make(Set, len(elems))
	for _, e := range elems {
		set.add(e)
	}
	return set
}

// Add adds e to set, allocating the underlying map if necessary.
func (set *Set) Add(e string) {
	if *set == nil {
		*set = make(Set)
	}
	set.add(e)
}

func (set Set) add(e string) {
	set[e] = struct{}{}
}

// Contains reports whether e is an element of set.
func (set Set) Contains(e string) bool {
	_, found := set[e]
	return found
}

// Size returns the cardinality of set.
func (set Set) Size() int {
	return len(set)
}

// ToSlice returns a slice of set's elements sorted in lexicographical
// order.
func (set Set) ToSlice() []string {
	res := make([]string, 0, len(set))
	for e := range set {
		res = append(res, e)
	}
	slices.Sort(res)
	return res
}
