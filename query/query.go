// Package query holds the non-filter parts of a query's shape: paging, sorting
// and projection. Both render to canonical strings for fingerprinting.
package query

import (
	"strconv"
	"strings"
)

// Sort orders results by Field.
type Sort struct {
	Field      string
	Descending bool
}

// Options carries paging and sorting. A nil *Options means "no options".
type Options struct {
	// Page is 1-based; values below 1 are treated as 1 when paging.
	Page int
	// PageSize > 0 turns paging on.
	PageSize int
	Sort     []Sort
}

// Paged reports whether the options request a single page with a total count.
func (o *Options) Paged() bool {
	return o != nil && o.PageSize > 0
}

// Canonical renders o deterministically; nil renders as "null". Sort order is
// significant and kept as given.
func (o *Options) Canonical() string {
	if o == nil {
		return "null"
	}
	var b strings.Builder
	b.WriteString("opts(")
	if o.Paged() {
		page := o.Page
		if page < 1 {
			page = 1
		}
		b.WriteString("page=")
		b.WriteString(strconv.Itoa(page))
		b.WriteString(",size=")
		b.WriteString(strconv.Itoa(o.PageSize))
	}
	b.WriteString(",sort=[")
	for i, s := range o.Sort {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(s.Field))
		if s.Descending {
			b.WriteString(" desc")
		} else {
			b.WriteString(" asc")
		}
	}
	b.WriteString("])")
	return b.String()
}

// Selector lists projected fields. nil selects the whole entity; an empty
// non-nil selector is a distinct projection of nothing.
type Selector []string

// Canonical renders s; field order is significant.
func (s Selector) Canonical() string {
	if s == nil {
		return "null"
	}
	quoted := make([]string, len(s))
	for i, f := range s {
		quoted[i] = strconv.Quote(f)
	}
	return "select[" + strings.Join(quoted, ",") + "]"
}
