package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/useradmin/internal/userview"
)

type listOptions struct {
	search    string
	sort      string
	direction string
	page      int
}

func newListCmd(root *rootOptions) *cobra.Command {
	options := &listOptions{}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of users",
		Long: `Fetch the users and print one page of the sorted, filtered list.

Example:
  usersctl list --search an --sort name --direction desc --page 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, root, options)
		},
	}

	listCmd.Flags().StringVarP(&options.search, "search", "s", "", "Case-insensitive name filter")
	listCmd.Flags().StringVar(&options.sort, "sort", "", "Sort key: name, email or company.name")
	listCmd.Flags().StringVar(&options.direction, "direction", string(userview.Ascending), "Sort direction: asc or desc")
	listCmd.Flags().IntVarP(&options.page, "page", "p", 1, "Page number, starting at 1")

	return listCmd
}

func runList(cmd *cobra.Command, root *rootOptions, options *listOptions) error {
	sortKey, err := userview.ParseSortKey(options.sort)
	if err != nil {
		return err
	}
	direction, err := userview.ParseDirection(options.direction)
	if err != nil {
		return err
	}

	store := root.newStore()
	if err := store.FetchAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	current := userview.Sort{Key: sortKey, Direction: direction}
	page := userview.Derive(store.Users(), userview.Query{
		Sort:   current,
		Search: options.search,
		Page:   options.page,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderUsersTable(page.Items, current))
	fmt.Fprintln(out, renderPager(options.page, page.PageCount, page.Total))

	return nil
}
