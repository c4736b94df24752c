package pagination

// CalculateOffset converts a 1-based page number into a database OFFSET.
//
// Examples:
//   - Page 1, PerPage 20 -> Offset 0
//   - Page 2, PerPage 20 -> Offset 20
//   - Page 3, PerPage 10 -> Offset 20
func CalculateOffset(page, perPage int) int {
	return (page - 1) * perPage
}

// CalculateTotalPages computes the page count with ceiling division.
// Zero items still report one page so clients always have a valid range.
//
// Examples:
//   - Total 0, PerPage 20 -> 1 page
//   - Total 20, PerPage 20 -> 1 page
//   - Total 21, PerPage 20 -> 2 pages
func CalculateTotalPages(total int64, perPage int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
