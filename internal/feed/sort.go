package feed

import "fmt"

// SortField is a server-side sort column accepted by the fetch
// collaborators (and ultimately the stored procedures).
type SortField string

const (
	SortPostedDate      SortField = "posted_date"
	SortApplicationDate SortField = "application_date"
	SortMatchPercent    SortField = "match_percent"
	SortFirstName       SortField = "first_name"
	SortCompanyName     SortField = "company_name"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Option is a UI-level sort choice. Every list view in the app shares the
// same three options and the same mapping onto sort columns.
type Option string

const (
	OptionNewest Option = "newest"
	OptionOldest Option = "oldest"
	OptionMatch  Option = "match"
)

// ParseOption converts a raw string to an Option. The empty string maps to
// the default (newest); anything else unknown is an error.
func ParseOption(s string) (Option, error) {
	switch Option(s) {
	case OptionNewest, OptionOldest, OptionMatch:
		return Option(s), nil
	case "":
		return OptionNewest, nil
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// Keys maps the option onto the (column, direction) pair sent to the
// collaborator. dateField is the view's date column: posted_date for job
// feeds, application_date for application feeds.
//
//	newest (default) → dateField desc
//	oldest           → dateField asc
//	match            → match_percent desc
func (o Option) Keys(dateField SortField) (SortField, Order) {
	switch o {
	case OptionOldest:
		return dateField, Asc
	case OptionMatch:
		return SortMatchPercent, Desc
	default:
		return dateField, Desc
	}
}
