// Package urls holds the documentation links referenced from error hints
// and troubleshooting output.
//
// Keeping every link as a named constant in one file means a docs site
// reorganization is a single-file change. Nothing outside this package
// should embed a documentation URL directly.
package urls
