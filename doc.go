// Package regdesk looks up exam registration records from spreadsheet reports
// and renders Code 39 barcodes for them.
//
// Two reports feed a Desk: the IELTS report (an "Unpaid" sheet) and the School
// report (its first sheet by default). Each is streamed row by row, mapped into
// typed records and indexed by the identity "country name reference". Lookups
// are exact: no trimming, no case folding.
//
// # Features
//
//   - Stream XLSX, CSV and TSV reports with a bounded row window
//   - Automatic handling of compressed reports (gzip, bzip2, xz, zstandard)
//   - Header aliases for renamed report columns
//   - Sorted country and candidate name sets for front end dropdowns
//   - Barcode-only and composite (text plus barcode) PNG rendering
//   - Atomic index reload while lookups are in flight
//
// # Basic Usage
//
//	desk, err := regdesk.NewBuilder().
//	    AddIELTSReport("ORS.xlsx", regdesk.DefaultIELTSSheet).
//	    AddSchoolReport("schools.xlsx", regdesk.DefaultSchoolSheet).
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := desk.GetInformation("IELTS", "UK", "Jane Doe", "P123")
//	if errors.Is(err, regdesk.ErrRecordNotFound) {
//	    fmt.Println(regdesk.NoInformationMessage)
//	}
//	png := desk.GenerateCompositeBarcode("P123", text)
//
// # Missing Reports
//
// A report that does not exist or cannot be read is logged at warn level and
// contributes no records; Build still returns a usable Desk. Only configuration
// errors, such as an unsupported file extension or no report at all, fail Build.
// A directory or a file without read permission counts as unreadable.
//
// # Blank Rows
//
// Leading rows with no populated cell are skipped before the header. By default
// a data row whose cells are all blank is dropped as well, so a sheet does not
// yield one record per physical row when it contains such rows, and a blank
// row never adds "" to the country list. Use SetKeepEmptyRows(true) (or
// WithKeepEmptyRows on a SheetParser) to emit them as all-blank records.
//
// # Collisions
//
// Two rows of one product with the same identity resolve last-write-wins: the
// row read later replaces the earlier one. Index.Collisions reports how many
// rows were replaced.
//
// # Barcodes
//
// Payloads are encoded as Code 39 without a check digit. Rendering never
// returns an error to a Desk caller: failures are logged and a blank
// placeholder image is returned instead.
package regdesk
