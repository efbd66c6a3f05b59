// Package harness provides conformance testing for frames, documents and
// queries.
//
// A scenario names a frame document and a triple dataset, then lists the
// documents, queries and exports expected from them. The dataset is imported
// into a fresh in-memory store for every run, so scenarios exercise the
// import path as well as the read side.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: library
//	description: "What this scenario validates"
//	frames: frames.cue      # frame document, file or CUE directory
//	dataset: library.yaml   # store.Dataset triples
//	documents:
//	  - id: Book/hobbit
//	    expect: { title: The Hobbit, pages: 310 }
//	  - id: Book/missing
//	    missing: true
//	queries:
//	  - name: fiction by pages
//	    class: Book
//	    filter: '{genre: {eq: fiction}}'
//	    order_by: '{pages: DESC}'
//	    expect: [Book/hobbit, Book/colour]
//	  - name: unknown class
//	    class: Magazine
//	    error: E204
//	exports:
//	  - name: books
//	    types: [Book]
//	    parallel: true
//	    expect: [Book/colour, Book/hobbit]
//
// Paths resolve relative to the scenario file. Document expectations are
// subset matches on objects; query and export expectations list ids in
// order. A query step may instead expect an error: a query error code, or
// "compile" for a filter the compiler must reject.
//
// # Golden Files
//
// Every run produces a snapshot: canonical JSON holding each materialized
// document, each query's ids and each export's ids and digest. RunSuite
// compares it against golden/<name>.golden beside the scenario file when one
// exists, and rewrites it with SuiteOptions.Update. Go tests can use
// RunWithGolden, which stores snapshots under testdata/golden via goldie.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/library.scenario.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
