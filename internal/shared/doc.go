// Package shared holds helpers used by more than one package of the FTE
// dashboard that do not belong to a single layer.
//
// The testutil subpackage is the main inhabitant. It provides:
//
//	- a buffered slog handler for asserting on log output
//	- excelize helpers that build fixture workbooks in a temp directory
//
// Example:
//
//	func TestLoader(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteWorkbook(t, t.TempDir(), "optimal_fte.xlsx", "Sheet1",
//	        []interface{}{"Section", "Optimal FTE"},
//	        []interface{}{"Chest", 3.0},
//	    )
//	    ...
//	}
//
// Nothing in this package may import production packages other than
// pkg/contracts, so it can be used from any test without cycles.
package shared
