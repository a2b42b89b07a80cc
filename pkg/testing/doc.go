// Package testing provides a widget testing framework for page layouts.
//
// # Quick Start
//
// Create a tester, pump a widget, and make assertions:
//
//	func TestMyWidget(t *testing.T) {
//	    tester := pagetest.NewWidgetTesterWithT(t)
//	    tester.PumpWidget(MyWidget{})
//
//	    if !tester.Find(pagetest.ByText("Submitted")).Exists() {
//	        t.Error("expected 'Submitted' text")
//	    }
//	}
//
// # Background Work
//
// Widgets that start tasks settle with:
//
//	tester.Settle(time.Second)
//
// # Snapshot Testing
//
// Compare the rendered markup against a golden file:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/page.snapshot.html")
//
// Update snapshots with:
//
//	PAGELAYOUT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Fakes
//
// [RecordingAds] and [RecordingSource] stand in for the ad service and the
// breakpoint source and record every call.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import pagetest "github.com/go-drift/pagelayout/pkg/testing"
package testing
