package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidUserID is returned when a JSON id is neither an integer nor a string.
var ErrInvalidUserID = errors.New("user id must be an integer or a string")

// UserID identifies a user. The remote source hands out integers, while
// clients may also use strings, so both forms are kept apart: 1 and "1" are
// different ids.
type UserID struct {
	num    int64
	text   string
	isText bool
}

func NumericID(n int64) UserID {
	return UserID{num: n}
}

func TextID(s string) UserID {
	return UserID{text: s, isText: true}
}

// NewClientID builds the id of a record created locally: the Unix time in milliseconds.
func NewClientID(now time.Time) UserID {
	return NumericID(now.UnixMilli())
}

// ParseUserID reads an id from a URL path segment. Anything that parses as a
// base-10 integer becomes a numeric id.
func ParseUserID(raw string) UserID {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return NumericID(n)
	}

	return TextID(raw)
}

func (id UserID) IsZero() bool {
	if id.isText {
		return id.text == ""
	}

	return id.num == 0
}

func (id UserID) String() string {
	if id.isText {
		return id.text
	}

	return strconv.FormatInt(id.num, 10)
}

func (id UserID) MarshalJSON() ([]byte, error) {
	if id.isText {
		return json.Marshal(id.text)
	}

	return strconv.AppendInt(nil, id.num, 10), nil
}

func (id *UserID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if bytes.Equal(trimmed, []byte("null")) {
		*id = UserID{}
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*id = TextID(text)
		return nil
	}

	n, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUserID, trimmed)
	}
	*id = NumericID(n)

	return nil
}

type Company struct {
	Name string `json:"name" validate:"notblank"`
}

// User is the only entity of the system. Extra fields sent by the remote
// source are dropped on decode.
type User struct {
	ID      UserID  `json:"id"`
	Name    string  `json:"name" validate:"notblank"`
	Email   string  `json:"email" validate:"notblank,email"`
	Company Company `json:"company"`
}

type UsersPageResponse struct {
	Items     []User `json:"items"`
	Total     int    `json:"total"`
	Page      int    `json:"page"`
	PageCount int    `json:"page_count"`
	Sort      string `json:"sort"`
	Direction string `json:"direction"`
	Search    string `json:"search"`
}

type UsersQuery struct {
	Search    string `validate:"max=200"`
	Sort      string `validate:"omitempty,oneof=name email company.name"`
	Direction string `validate:"omitempty,oneof=asc desc"`
	Page      int    `validate:"gte=0"`
}

type StoreStatusResponse struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
	Count   int    `json:"count"`
}

type ValidationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Slide struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type CarouselResponse struct {
	Index  int   `json:"index"`
	Count  int   `json:"count"`
	Fading bool  `json:"fading"`
	Slide  Slide `json:"slide"`
}
