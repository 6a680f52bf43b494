package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/patric-chuzhbe/useradmin/internal/models"
	"github.com/patric-chuzhbe/useradmin/internal/session"
	"github.com/patric-chuzhbe/useradmin/internal/userform"
	"github.com/patric-chuzhbe/useradmin/internal/userview"
)

// columnTitle is the header of a sortable column with the arrow of the
// active sort, if any.
func columnTitle(key userview.SortKey, current userview.Sort) string {
	title := userform.Field(key).Label()
	if current.Key != key {
		return title
	}
	if current.Direction == userview.Descending {
		return title + " ▼"
	}
	return title + " ▲"
}

func renderUsersTable(items []models.User, current userview.Sort) string {
	headers := []string{"ID"}
	for _, key := range userview.SortKeys() {
		headers = append(headers, columnTitle(key, current))
	}

	rows := make([][]string, 0, len(items))
	for _, usr := range items {
		rows = append(rows, []string{usr.ID.String(), usr.Name, usr.Email, usr.Company.Name})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func renderPager(page, pageCount, total int) string {
	if pageCount == 0 {
		return infoStyle.Render("No users found")
	}

	noun := "users"
	if total == 1 {
		noun = "user"
	}

	return infoStyle.Render(fmt.Sprintf("Page %d of %d · %d %s", page, pageCount, total, noun))
}

// renderStatus is empty when the store is idle and healthy.
func renderStatus(loading bool, errorMessage string) string {
	switch {
	case errorMessage != "":
		return errorStyle.Render("Failed to load users: " + errorMessage)
	case loading:
		return warningStyle.Render("Loading users...")
	default:
		return ""
	}
}

func renderSnapshot(snapshot session.Snapshot) string {
	var builder strings.Builder

	builder.WriteString(headerStyle.Render("Users"))
	builder.WriteString("\n")
	if status := renderStatus(snapshot.Loading, snapshot.Error); status != "" {
		builder.WriteString(status)
		builder.WriteString("\n")
	}
	if snapshot.Search != "" {
		builder.WriteString(infoStyle.Render(fmt.Sprintf("Search: %q", snapshot.Search)))
		builder.WriteString("\n")
	}
	builder.WriteString(renderUsersTable(snapshot.Page.Items, snapshot.Sort))
	builder.WriteString("\n")
	builder.WriteString(renderPager(snapshot.PageNumber, snapshot.Page.PageCount, snapshot.Page.Total))
	builder.WriteString("\n")

	return builder.String()
}

// renderValidationErrors lists messages in form order.
func renderValidationErrors(errs userform.Errors) string {
	lines := make([]string, 0, len(errs))
	for _, field := range userform.Fields() {
		if msg, found := errs[field]; found {
			lines = append(lines, errorStyle.Render(fmt.Sprintf("%s: %s", field.Label(), msg)))
		}
	}

	return strings.Join(lines, "\n")
}
