// Package files loads the dashboard's workbooks from the data directory.
//
// Loader is the read path. It resolves a (path, sheet) pair through a
// read-through Cache and falls back to an empty table with the declared
// schema when the file is absent:
//
//	loader := files.NewLoader(workbook.NewCodec(), files.NewMemoryCache(0), logger)
//	res := loader.Load(ctx, paths.OptimalWorkbook, domain.OptimalSchema, "")
//	if res.Err != nil {
//	    // decode failure: res.Table is the empty schema table
//	}
//
// Decode failures are reported through LoadResult.Err as a *LoadError and
// are never cached, so a repaired file is picked up on the next load.
// Missing files are cached like successful loads. Concurrent loads of the
// same key share one read.
//
// Manager maps table kinds to their configured workbook and sheet, lists
// the workbooks present in the data directory and checks that the
// directory is writable for the health endpoints.
package files
