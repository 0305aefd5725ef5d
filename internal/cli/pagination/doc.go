// Package pagination provides the paging and sorting shared by list-style CLI
// commands.
//
//   - Params: --limit/--offset and --page/--page-size flags and their validation
//   - Meta: page metadata printed with paginated results
//   - ArticleSorter: field-based ordering of article listings
package pagination
