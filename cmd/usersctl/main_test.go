package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/useradmin/internal/models"
	"github.com/patric-chuzhbe/useradmin/internal/session"
	"github.com/patric-chuzhbe/useradmin/internal/userform"
	"github.com/patric-chuzhbe/useradmin/internal/userview"
)

const remoteUsers = `[
	{"id":1,"name":"Leanne Graham","email":"Sincere@april.biz","company":{"name":"Romaguera-Crona"}},
	{"id":2,"name":"Ervin Howell","email":"Shanna@melissa.tv","company":{"name":"Deckow-Crist"}},
	{"id":3,"name":"Clementine Bauch","email":"Nathan@yesenia.net","company":{"name":"Romaguera-Jacobson"}}
]`

func newRemote(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestColumnTitle(t *testing.T) {
	testCases := []struct {
		name    string
		key     userview.SortKey
		current userview.Sort
		want    string
	}{
		{name: "unsorted", key: userview.SortName, current: userview.Sort{}, want: "Name"},
		{name: "ascending", key: userview.SortEmail, current: userview.Sort{Key: userview.SortEmail, Direction: userview.Ascending}, want: "Email ▲"},
		{name: "descending", key: userview.SortCompanyName, current: userview.Sort{Key: userview.SortCompanyName, Direction: userview.Descending}, want: "Company Name ▼"},
		{name: "other column sorted", key: userview.SortName, current: userview.Sort{Key: userview.SortEmail, Direction: userview.Ascending}, want: "Name"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, columnTitle(testCase.key, testCase.current))
		})
	}
}

func TestRenderPager(t *testing.T) {
	assert.Contains(t, renderPager(1, 0, 0), "No users found")
	assert.Contains(t, renderPager(2, 3, 12), "Page 2 of 3 · 12 users")
	assert.Contains(t, renderPager(1, 1, 1), "1 user")
}

func TestRenderStatus(t *testing.T) {
	assert.Empty(t, renderStatus(false, ""))
	assert.Contains(t, renderStatus(true, ""), "Loading users...")
	assert.Contains(t, renderStatus(true, "Network Error"), "Failed to load users: Network Error")
}

func TestRenderSnapshot(t *testing.T) {
	snapshot := session.Snapshot{
		Page: userview.Page{
			Items: []models.User{{
				ID:      models.NumericID(7),
				Name:    "Ann",
				Email:   "a@x.com",
				Company: models.Company{Name: "Zen"},
			}},
			Total:     1,
			PageCount: 1,
		},
		PageNumber: 1,
		Search:     "an",
		Sort:       userview.Sort{Key: userview.SortName, Direction: userview.Ascending},
	}

	rendered := renderSnapshot(snapshot)

	for _, want := range []string{"Ann", "a@x.com", "Zen", "Name ▲", `Search: "an"`, "Page 1 of 1"} {
		assert.Contains(t, rendered, want)
	}
}

func TestRenderValidationErrorsInFormOrder(t *testing.T) {
	rendered := renderValidationErrors(userform.Errors{
		userform.FieldCompanyName: "Company name is required",
		userform.FieldName:        "Name is required",
	})

	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Name: Name is required")
	assert.Contains(t, lines[1], "Company Name: Company name is required")
}

func TestListCommand(t *testing.T) {
	remote := newRemote(t, http.StatusOK, remoteUsers)

	out, err := runCmd(t, "list", "--source-url", remote.URL, "--sort", "name", "--search", "r")

	require.NoError(t, err)
	assert.Contains(t, out, "Name ▲")
	assert.Contains(t, out, "Page 1 of 1 · 2 users")
	assert.Contains(t, out, "Ervin Howell")
	assert.NotContains(t, out, "Clementine Bauch")
	assert.Less(t, strings.Index(out, "Ervin Howell"), strings.Index(out, "Leanne Graham"))
}

func TestListCommandErrors(t *testing.T) {
	testCases := []struct {
		name string
		args func(url string) []string
		want string
	}{
		{
			name: "remote failure",
			args: func(url string) []string { return []string{"list", "-u", url} },
			want: "request failed with status code 500",
		},
		{
			name: "unknown sort key",
			args: func(url string) []string { return []string{"list", "-u", url, "--sort", "company"} },
			want: "unknown sort key",
		},
		{
			name: "unknown direction",
			args: func(url string) []string { return []string{"list", "-u", url, "--direction", "sideways"} },
			want: "unknown sort direction",
		},
	}

	remote := newRemote(t, http.StatusInternalServerError, "")

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := runCmd(t, testCase.args(remote.URL)...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.want)
		})
	}
}

func TestMenuOptions(t *testing.T) {
	values := func(snapshot session.Snapshot) []string {
		result := []string{}
		for _, option := range menuOptions(snapshot) {
			result = append(result, option.Value)
		}
		return result
	}

	empty := session.Snapshot{PageNumber: 1}
	assert.Equal(t, []string{"search", "sort", "add", "refresh", "quit"}, values(empty))

	middle := session.Snapshot{
		PageNumber: 2,
		Page: userview.Page{
			Items:     []models.User{{ID: models.NumericID(6)}},
			Total:     11,
			PageCount: 3,
		},
	}
	assert.Equal(t,
		[]string{"search", "sort", "next", "prev", "add", "edit", "delete", "refresh", "quit"},
		values(middle),
	)
}

func TestValueOf(t *testing.T) {
	usr := models.User{Name: "Ann", Email: "a@x.com", Company: models.Company{Name: "Zen"}}

	assert.Equal(t, "Ann", valueOf(usr, userform.FieldName))
	assert.Equal(t, "a@x.com", valueOf(usr, userform.FieldEmail))
	assert.Equal(t, "Zen", valueOf(usr, userform.FieldCompanyName))
}
