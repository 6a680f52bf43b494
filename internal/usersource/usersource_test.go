package usersource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/useradmin/internal/models"
)

const placeholderUsers = `[
	{
		"id": 1,
		"name": "Leanne Graham",
		"username": "Bret",
		"email": "Sincere@april.biz",
		"phone": "1-770-736-8031 x56442",
		"company": {"name": "Romaguera-Crona", "catchPhrase": "Multi-layered client-server neural-net"}
	},
	{
		"id": 2,
		"name": "Ervin Howell",
		"email": "Shanna@melissa.tv",
		"company": {"name": "Deckow-Crist"}
	}
]`

func TestFetchUsers(t *testing.T) {
	type tExpected struct {
		users     []models.User
		errTarget error
		anyErr    bool
	}
	type tTestCase struct {
		name     string
		status   int
		body     string
		expected tExpected
	}

	testCases := []tTestCase{
		{
			name:   "positive",
			status: http.StatusOK,
			body:   placeholderUsers,
			expected: tExpected{
				users: []models.User{
					{
						ID:      models.NumericID(1),
						Name:    "Leanne Graham",
						Email:   "Sincere@april.biz",
						Company: models.Company{Name: "Romaguera-Crona"},
					},
					{
						ID:      models.NumericID(2),
						Name:    "Ervin Howell",
						Email:   "Shanna@melissa.tv",
						Company: models.Company{Name: "Deckow-Crist"},
					},
				},
			},
		},
		{
			name:   "empty collection",
			status: http.StatusOK,
			body:   `[]`,
			expected: tExpected{
				users: []models.User{},
			},
		},
		{
			name:   "null collection",
			status: http.StatusOK,
			body:   `null`,
			expected: tExpected{
				users: []models.User{},
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `oops`,
			expected: tExpected{
				errTarget: ErrUnexpectedStatus,
			},
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{}`,
			expected: tExpected{
				errTarget: ErrUnexpectedStatus,
			},
		},
		{
			name:   "not an array",
			status: http.StatusOK,
			body:   `{"id": 1}`,
			expected: tExpected{
				errTarget: ErrMalformedPayload,
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Empty(t, r.URL.RawQuery)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			}))
			defer srv.Close()

			users, err := New(srv.URL).FetchUsers(context.Background())

			if testCase.expected.errTarget != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, testCase.expected.errTarget)
				assert.Nil(t, users)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expected.users, users)
		})
	}
}

func TestFetchUsersStatusMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).FetchUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed with status code 503")
}

func TestFetchUsersNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).FetchUsers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching users")
}

func TestFetchUsersTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	source := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := source.FetchUsers(context.Background())
	assert.Error(t, err)
}
