// Package sawmill provides batch analysis of exported service logs:
// loading tabular exports, cleaning them, classifying error messages
// against a fixed taxonomy, and aggregating the metric catalogue.
//
// Quick start:
//
//	a, err := sawmill.New(sawmill.WithLedgerFile("ledger.json"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	res, err := a.AnalyzeFile(ctx, "exports/service_logs.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Service, res.Status.ErrorRate)
//
// The Analyzer is safe for sequential reuse across files. Remote
// classification backends are optional; without one, error messages
// that no keyword rule matches resolve to the catch-all category.
package sawmill
