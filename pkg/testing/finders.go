package testing

import (
	"fmt"
	"reflect"

	"github.com/go-loom/loom/pkg/core"
)

// Finder locates elements in the view tree.
type Finder interface {
	// Evaluate returns all matching elements under root, depth-first
	// pre-order.
	Evaluate(tree *core.Tree, root core.ElementID) []*core.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*core.Element
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *core.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("Finder found no elements: %s", r.description()))
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *core.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s",
			index, len(r.elements), r.description()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*core.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// ByType finds elements whose view has the same concrete type as sample.
func ByType(sample core.View) Finder {
	return typeFinder{target: reflect.TypeOf(sample)}
}

type typeFinder struct {
	target reflect.Type
}

func (f typeFinder) Evaluate(tree *core.Tree, root core.ElementID) []*core.Element {
	var matches []*core.Element
	tree.Walk(root, func(element *core.Element) bool {
		if reflect.TypeOf(element.View()) == f.target {
			matches = append(matches, element)
		}
		return true
	})
	return matches
}

func (f typeFinder) Description() string {
	return fmt.Sprintf("views of type %v", f.target)
}

// ByKey finds elements whose view carries the given key.
func ByKey(key any) Finder {
	return keyFinder{key: key}
}

type keyFinder struct {
	key any
}

func (f keyFinder) Evaluate(tree *core.Tree, root core.ElementID) []*core.Element {
	var matches []*core.Element
	tree.Walk(root, func(element *core.Element) bool {
		if reflect.DeepEqual(element.View().Key(), f.key) {
			matches = append(matches, element)
		}
		return true
	})
	return matches
}

func (f keyFinder) Description() string {
	return fmt.Sprintf("views with key %v", f.key)
}

// ByPredicate finds elements matching an arbitrary predicate.
func ByPredicate(description string, predicate func(*core.Element) bool) Finder {
	return predicateFinder{description: description, predicate: predicate}
}

type predicateFinder struct {
	description string
	predicate   func(*core.Element) bool
}

func (f predicateFinder) Evaluate(tree *core.Tree, root core.ElementID) []*core.Element {
	var matches []*core.Element
	tree.Walk(root, func(element *core.Element) bool {
		if f.predicate(element) {
			matches = append(matches, element)
		}
		return true
	})
	return matches
}

func (f predicateFinder) Description() string {
	return f.description
}
