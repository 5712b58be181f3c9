// Package testing provides a harness for testing view trees against the
// pipeline without a real renderer.
//
// Create a tester, pump a view, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := loomtest.NewTesterWithT(t)
//	    tester.PumpView(Counter{})
//
//	    label := tester.Find(loomtest.ByType(Label{})).First()
//	    ...
//	}
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import loomtest "github.com/go-loom/loom/pkg/testing"
package testing
