package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/useradmin/internal/models"
	"github.com/patric-chuzhbe/useradmin/internal/session"
	"github.com/patric-chuzhbe/useradmin/internal/userform"
	"github.com/patric-chuzhbe/useradmin/internal/userview"
)

// BrowseAction is one entry of the main menu.
type BrowseAction string

const (
	ActionSearch   BrowseAction = "search"
	ActionSort     BrowseAction = "sort"
	ActionNextPage BrowseAction = "next"
	ActionPrevPage BrowseAction = "prev"
	ActionAdd      BrowseAction = "add"
	ActionEdit     BrowseAction = "edit"
	ActionDelete   BrowseAction = "delete"
	ActionRefresh  BrowseAction = "refresh"
	ActionQuit     BrowseAction = "quit"
)

// huhConfirmer asks for deletion confirmation with a huh dialog.
type huhConfirmer struct{}

func (huhConfirmer) ConfirmDelete(ctx context.Context, usr models.User) (bool, error) {
	var confirm bool
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Confirm deletion").
				Description(fmt.Sprintf("Are you sure you want to delete %s (%s)?", usr.Name, usr.Email)).
				Affirmative("Yes, delete it!").
				Negative("Cancel").
				Value(&confirm),
		),
	)

	if err := confirmForm.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}

	return confirm, nil
}

func newBrowseCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive user list",
		Long: `Browse the user list interactively.

Search by name, sort by a column, page through the results and add,
edit or delete users. Deletion asks for confirmation first.

Example:
  usersctl browse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := session.New(root.newStore(), huhConfirmer{})
			defer s.Close()

			return runBrowse(cmd.Context(), s)
		},
	}
}

func runBrowse(ctx context.Context, s *session.Session) error {
	fmt.Println(titleStyle.Render("User Management"))

	if err := s.Load(ctx); err != nil {
		fmt.Println(errorStyle.Render("Failed to load users: " + err.Error()))
	}

	for {
		snapshot := s.Snapshot()
		fmt.Println(renderSnapshot(snapshot))

		action, err := promptForAction(ctx, snapshot)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("failed to get action: %w", err)
		}

		switch action {
		case ActionSearch:
			err = promptSearch(ctx, s, snapshot.Search)
		case ActionSort:
			err = promptSort(ctx, s, snapshot.Sort)
		case ActionNextPage:
			s.SetPage(snapshot.PageNumber + 1)
		case ActionPrevPage:
			s.SetPage(snapshot.PageNumber - 1)
		case ActionAdd:
			s.OpenAdd()
			err = runDialog(ctx, s)
		case ActionEdit:
			err = editUser(ctx, s, snapshot.Page.Items)
		case ActionDelete:
			err = deleteUser(ctx, s, snapshot.Page.Items)
		case ActionRefresh:
			if loadErr := s.Load(ctx); loadErr != nil {
				fmt.Println(errorStyle.Render("Failed to load users: " + loadErr.Error()))
			}
		case ActionQuit:
			fmt.Println(successStyle.Render("Goodbye!"))
			return nil
		}

		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			fmt.Println(errorStyle.Render(err.Error()))
		}
		fmt.Println()
	}
}

// menuOptions offers only the actions that make sense for the snapshot.
func menuOptions(snapshot session.Snapshot) []huh.Option[string] {
	options := []huh.Option[string]{
		huh.NewOption("Search by name", string(ActionSearch)),
		huh.NewOption("Sort by column", string(ActionSort)),
	}
	if snapshot.PageNumber < snapshot.Page.PageCount {
		options = append(options, huh.NewOption("Next page", string(ActionNextPage)))
	}
	if snapshot.PageNumber > 1 {
		options = append(options, huh.NewOption("Previous page", string(ActionPrevPage)))
	}
	options = append(options, huh.NewOption("Add user", string(ActionAdd)))
	if len(snapshot.Page.Items) > 0 {
		options = append(options,
			huh.NewOption("Edit user", string(ActionEdit)),
			huh.NewOption("Delete user", string(ActionDelete)),
		)
	}

	return append(options,
		huh.NewOption("Reload from source", string(ActionRefresh)),
		huh.NewOption("Quit", string(ActionQuit)),
	)
}

func promptForAction(ctx context.Context, snapshot session.Snapshot) (BrowseAction, error) {
	var action string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(menuOptions(snapshot)...).
				Value(&action),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return ActionQuit, err
	}

	return BrowseAction(action), nil
}

func promptSearch(ctx context.Context, s *session.Session, current string) error {
	search := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search").
				Description("Part of a name; leave empty to show everyone").
				Value(&search),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	s.SetSearch(search)

	return nil
}

func promptSort(ctx context.Context, s *session.Session, current userview.Sort) error {
	options := make([]huh.Option[string], 0, len(userview.SortKeys()))
	for _, key := range userview.SortKeys() {
		options = append(options, huh.NewOption(columnTitle(key, current), string(key)))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sort by (choosing the active column again reverses it)").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	s.ToggleSort(userview.SortKey(selected))

	return nil
}

func promptUser(ctx context.Context, title string, items []models.User) (models.UserID, error) {
	options := make([]huh.Option[string], 0, len(items))
	ids := make(map[string]models.UserID, len(items))
	for _, usr := range items {
		key := usr.ID.String()
		ids[key] = usr.ID
		options = append(options, huh.NewOption(fmt.Sprintf("%s <%s>", usr.Name, usr.Email), key))
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return models.UserID{}, err
	}

	return ids[selected], nil
}

func editUser(ctx context.Context, s *session.Session, items []models.User) error {
	id, err := promptUser(ctx, "Select user to edit:", items)
	if err != nil {
		return err
	}
	if err := s.OpenEdit(id); err != nil {
		return err
	}

	return runDialog(ctx, s)
}

func deleteUser(ctx context.Context, s *session.Session, items []models.User) error {
	id, err := promptUser(ctx, "Select user to delete:", items)
	if err != nil {
		return err
	}

	deleted, err := s.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted {
		fmt.Println(successStyle.Render("User deleted"))
	} else {
		fmt.Println(infoStyle.Render("Deletion cancelled"))
	}

	return nil
}

// fieldValidator routes a huh field edit through the session so the same
// touched/visible-error rules apply as everywhere else.
func fieldValidator(s *session.Session, field userform.Field) func(string) error {
	return func(value string) error {
		if err := s.SetField(field, value); err != nil {
			return err
		}
		if err := s.Blur(field); err != nil {
			return err
		}
		if msg := s.Snapshot().Dialog.Errors[field]; msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// runDialog shows the open add/edit dialog until it is submitted or
// cancelled.
func runDialog(ctx context.Context, s *session.Session) error {
	for {
		dialog := s.Snapshot().Dialog
		if !dialog.Open {
			return nil
		}

		title := "Add User"
		if dialog.Editing {
			title = "Edit User"
		}

		values := map[userform.Field]*string{}
		inputs := make([]huh.Field, 0, len(userform.Fields()))
		for _, field := range userform.Fields() {
			value := valueOf(dialog.Draft, field)
			values[field] = &value
			inputs = append(inputs, huh.NewInput().
				Title(field.Label()).
				Value(&value).
				Validate(fieldValidator(s, field)))
		}

		form := huh.NewForm(huh.NewGroup(inputs...).Title(title))
		if err := form.RunWithContext(ctx); err != nil {
			s.Cancel()
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println(infoStyle.Render("Changes discarded"))
				return nil
			}
			return err
		}

		for field, value := range values {
			if err := s.SetField(field, *value); err != nil {
				return err
			}
		}

		errs, ok := s.Submit()
		if ok {
			fmt.Println(successStyle.Render("User saved"))
			return nil
		}
		fmt.Println(renderValidationErrors(errs))
	}
}

func valueOf(usr models.User, field userform.Field) string {
	switch field {
	case userform.FieldName:
		return usr.Name
	case userform.FieldEmail:
		return usr.Email
	case userform.FieldCompanyName:
		return usr.Company.Name
	default:
		return ""
	}
}
