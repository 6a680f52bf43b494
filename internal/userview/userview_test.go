package userview

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/useradmin/internal/models"
)

func user(id int64, name, email, company string) models.User {
	return models.User{
		ID:      models.NumericID(id),
		Name:    name,
		Email:   email,
		Company: models.Company{Name: company},
	}
}

func ids(users []models.User) []string {
	result := make([]string, 0, len(users))
	for _, usr := range users {
		result = append(result, usr.ID.String())
	}
	return result
}

func names(users []models.User) []string {
	result := make([]string, 0, len(users))
	for _, usr := range users {
		result = append(result, usr.Name)
	}
	return result
}

func numberedUsers(n int) []models.User {
	result := make([]models.User, 0, n)
	for i := 1; i <= n; i++ {
		result = append(result, user(int64(i), fmt.Sprintf("User %02d", i), fmt.Sprintf("u%d@x.com", i), "Co"))
	}
	return result
}

func TestBobAnnScenario(t *testing.T) {
	list := []models.User{
		user(1, "Bob", "b@x.com", "Acme"),
		user(2, "Ann", "a@x.com", "Zen"),
	}

	sorted := Derive(list, Query{Sort: ToggleSort(Sort{}, SortName), Page: 1})
	assert.Equal(t, []string{"Ann", "Bob"}, names(sorted.Items))

	searched := Derive(list, Query{Sort: Sort{Key: SortName, Direction: Ascending}, Search: "an", Page: 1})
	assert.Equal(t, []string{"Ann"}, names(searched.Items))
	assert.Equal(t, 1, searched.Total)
	assert.Equal(t, 1, searched.PageCount)
}

func TestSortAscendingThenDescendingReverses(t *testing.T) {
	list := []models.User{
		user(1, "Carol", "c1@x.com", "Beta"),
		user(2, "Alice", "a@x.com", "Alpha"),
		user(3, "Dave", "d@x.com", "Beta"),
		user(4, "Bob", "b@x.com", "Alpha"),
		user(5, "Eve", "e@x.com", "Gamma"),
		user(6, "Frank", "f@x.com", "Beta"),
	}

	testCases := []struct {
		name string
		key  SortKey
		asc  []string
		desc []string
	}{
		{
			name: "name without ties",
			key:  SortName,
			asc:  []string{"2", "4", "1", "3", "5", "6"},
			desc: []string{"6", "5", "3", "1", "4", "2"},
		},
		{
			name: "company with ties keeps original order in both directions",
			key:  SortCompanyName,
			asc:  []string{"2", "4", "1", "3", "6", "5"},
			desc: []string{"5", "1", "3", "6", "2", "4"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			asc := SortUsers(list, Sort{Key: testCase.key, Direction: Ascending})
			desc := SortUsers(list, Sort{Key: testCase.key, Direction: Descending})

			assert.Equal(t, testCase.asc, ids(asc))
			assert.Equal(t, testCase.desc, ids(desc))

			for i := range asc {
				assert.Equal(t,
					testCase.key.Value(asc[i]),
					testCase.key.Value(desc[len(desc)-1-i]),
					"key order must be exactly reversed",
				)
			}
		})
	}
}

func TestSortWithoutKeyKeepsOrder(t *testing.T) {
	list := []models.User{
		user(3, "Zed", "z@x.com", "Z"),
		user(1, "Amy", "a@x.com", "A"),
		user(2, "Max", "m@x.com", "M"),
	}

	assert.Equal(t, list, SortUsers(list, Sort{}))
	assert.Equal(t, list, SortUsers(list, Sort{Direction: Descending}))
}

func TestSortDoesNotTouchInput(t *testing.T) {
	list := []models.User{
		user(1, "Bob", "b@x.com", "Acme"),
		user(2, "Ann", "a@x.com", "Zen"),
	}

	_ = SortUsers(list, Sort{Key: SortName, Direction: Ascending})

	assert.Equal(t, []string{"Bob", "Ann"}, names(list))
}

func TestSortByEmailIsCaseSensitive(t *testing.T) {
	list := []models.User{
		user(1, "One", "bob@x.com", "Acme"),
		user(2, "Two", "Zed@x.com", "Acme"),
		user(3, "Three", "amy@x.com", "Acme"),
	}

	sorted := SortUsers(list, Sort{Key: SortEmail, Direction: Ascending})

	assert.Equal(t, []string{"2", "3", "1"}, ids(sorted))
}

func TestFilterByName(t *testing.T) {
	list := []models.User{
		user(1, "Leanne Graham", "l@x.com", "A"),
		user(2, "Ervin Howell", "e@x.com", "B"),
		user(3, "Clementine Bauch", "c@x.com", "C"),
	}

	testCases := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty", search: "", want: []string{"1", "2", "3"}},
		{name: "blank", search: "   ", want: []string{"1", "2", "3"}},
		{name: "case insensitive", search: "GRAHAM", want: []string{"1"}},
		{name: "trimmed", search: "  howell ", want: []string{"2"}},
		{name: "substring in several", search: "in", want: []string{"2", "3"}},
		{name: "email is not searched", search: "x.com", want: []string{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, ids(FilterByName(list, testCase.search)))
		})
	}
}

func TestNoMatchesMeansNoPages(t *testing.T) {
	list := numberedUsers(12)

	for _, page := range []int{-1, 0, 1, 2, 3, 100} {
		result := Derive(list, Query{Search: "nobody", Page: page})

		assert.Equal(t, 0, result.PageCount)
		assert.Equal(t, 0, result.Total)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
	}
}

func TestPaginate(t *testing.T) {
	list := numberedUsers(12)

	testCases := []struct {
		page int
		want []string
	}{
		{page: 1, want: []string{"1", "2", "3", "4", "5"}},
		{page: 2, want: []string{"6", "7", "8", "9", "10"}},
		{page: 3, want: []string{"11", "12"}},
		{page: 4, want: []string{}},
		{page: 0, want: []string{}},
		{page: -2, want: []string{}},
		{page: math.MaxInt / 4, want: []string{}},
		{page: math.MaxInt, want: []string{}},
	}

	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("page %d", testCase.page), func(t *testing.T) {
			assert.Equal(t, testCase.want, ids(Paginate(list, testCase.page)))
		})
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(0))
	assert.Equal(t, 1, PageCount(1))
	assert.Equal(t, 1, PageCount(5))
	assert.Equal(t, 2, PageCount(6))
	assert.Equal(t, 3, PageCount(12))
}

func TestDeriveOrderIsSortFilterPaginate(t *testing.T) {
	list := numberedUsers(12)

	result := Derive(list, Query{
		Sort:   Sort{Key: SortName, Direction: Descending},
		Search: "user 1",
		Page:   1,
	})

	assert.Equal(t, []string{"User 12", "User 11", "User 10"}, names(result.Items))
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.PageCount)
}

func TestNewRecordShowsFirstWithoutSort(t *testing.T) {
	list := numberedUsers(7)
	fresh := user(1718000000000, "Newbie", "new@x.com", "Fresh")

	result := Derive(append([]models.User{fresh}, list...), Query{Page: 1})

	require.NotEmpty(t, result.Items)
	assert.Equal(t, fresh, result.Items[0])
}

func TestToggleSort(t *testing.T) {
	state := Sort{}

	state = ToggleSort(state, SortName)
	assert.Equal(t, Sort{Key: SortName, Direction: Ascending}, state)

	state = ToggleSort(state, SortName)
	assert.Equal(t, Sort{Key: SortName, Direction: Descending}, state)

	state = ToggleSort(state, SortName)
	assert.Equal(t, Sort{Key: SortName, Direction: Ascending}, state, "no unsorted state on repeated clicks")

	state = ToggleSort(Sort{Key: SortName, Direction: Descending}, SortEmail)
	assert.Equal(t, Sort{Key: SortEmail, Direction: Ascending}, state)
}

func TestParseSortKey(t *testing.T) {
	for _, raw := range []string{"", "name", "email", "company.name"} {
		key, err := ParseSortKey(raw)
		require.NoError(t, err)
		assert.Equal(t, SortKey(raw), key)
	}

	_, err := ParseSortKey("company")
	assert.ErrorIs(t, err, ErrUnknownSortKey)
}

func TestParseDirection(t *testing.T) {
	direction, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Ascending, direction)

	direction, err = ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Descending, direction)

	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestSortKeyValue(t *testing.T) {
	usr := user(1, "Bob", "b@x.com", "Acme")

	assert.Equal(t, "Bob", SortName.Value(usr))
	assert.Equal(t, "b@x.com", SortEmail.Value(usr))
	assert.Equal(t, "Acme", SortCompanyName.Value(usr))
	assert.Equal(t, "", SortNone.Value(usr))
	assert.Len(t, SortKeys(), 3)
}
