// Package userview computes the page of users a presentation layer shows:
// sort, then filter by name, then paginate. Everything here is a pure
// function of its inputs; nothing is cached between calls.
package userview

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/useradmin/internal/models"
)

// PageSize is fixed; the UI has no page-size selector.
const PageSize = 5

var (
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)

// SortKey names a sortable column. The zero value means "not sorted".
type SortKey string

const (
	SortNone        SortKey = ""
	SortName        SortKey = "name"
	SortEmail       SortKey = "email"
	SortCompanyName SortKey = "company.name"
)

// SortKeys lists the sortable columns in display order.
func SortKeys() []SortKey {
	return []SortKey{SortName, SortEmail, SortCompanyName}
}

// ParseSortKey accepts "", "name", "email" and "company.name".
func ParseSortKey(raw string) (SortKey, error) {
	switch key := SortKey(raw); key {
	case SortNone, SortName, SortEmail, SortCompanyName:
		return key, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortKey, raw)
	}
}

// Value is the typed accessor for the column.
func (k SortKey) Value(usr models.User) string {
	switch k {
	case SortName:
		return usr.Name
	case SortEmail:
		return usr.Email
	case SortCompanyName:
		return usr.Company.Name
	default:
		return ""
	}
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc" and "desc"; "" is read as ascending.
func ParseDirection(raw string) (Direction, error) {
	switch direction := Direction(raw); direction {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return Ascending, fmt.Errorf("%w: %q", ErrUnknownDirection, raw)
	}
}

type Sort struct {
	Key       SortKey
	Direction Direction
}

// ToggleSort is the column-header click: the same ascending key flips to
// descending, anything else sorts the clicked key ascending.
func ToggleSort(current Sort, key SortKey) Sort {
	if current.Key == key && current.Direction == Ascending {
		return Sort{Key: key, Direction: Descending}
	}

	return Sort{Key: key, Direction: Ascending}
}

type Query struct {
	Sort   Sort
	Search string
	// Page is 1-based.
	Page int
}

type Page struct {
	Items []models.User
	// Total is the number of records left after filtering.
	Total     int
	PageCount int
}

// SortUsers returns a stably sorted copy. An empty key keeps the input order.
func SortUsers(users []models.User, sort Sort) []models.User {
	sorted := slices.Clone(users)
	if sort.Key == SortNone {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b models.User) int {
		result := cmp.Compare(sort.Key.Value(a), sort.Key.Value(b))
		if sort.Direction == Descending {
			return -result
		}
		return result
	})

	return sorted
}

// FilterByName keeps users whose name contains the trimmed search text,
// ignoring case. Blank search keeps everyone.
func FilterByName(users []models.User, search string) []models.User {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return slices.Clone(users)
	}

	return funk.Filter(users, func(usr models.User) bool {
		return strings.Contains(strings.ToLower(usr.Name), needle)
	}).([]models.User)
}

// Paginate returns page number page (1-based) of users. Pages outside the
// available range, including page < 1, are empty.
func Paginate(users []models.User, page int) []models.User {
	if page < 1 {
		return []models.User{}
	}

	if page > PageCount(len(users)) {
		return []models.User{}
	}
	start := (page - 1) * PageSize
	end := min(start+PageSize, len(users))

	return slices.Clone(users[start:end])
}

// PageCount is ceil(total / PageSize); zero records give zero pages.
func PageCount(total int) int {
	return (total + PageSize - 1) / PageSize
}

// Derive runs the whole pipeline. The input slice is never modified.
func Derive(users []models.User, query Query) Page {
	filtered := FilterByName(SortUsers(users, query.Sort), query.Search)

	return Page{
		Items:     Paginate(filtered, query.Page),
		Total:     len(filtered),
		PageCount: PageCount(len(filtered)),
	}
}
