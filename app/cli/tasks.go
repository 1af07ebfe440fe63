package cli

import (
	"fmt"
	"strings"

	"taskmaster/app/models"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var status, category, search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks matching the filters, with counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := models.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			cf, err := models.ParseCategoryFilter(category)
			if err != nil {
				return err
			}

			b, release, err := a.board(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer release()

			b.SetStatus(sf)
			b.SetCategory(cf)
			b.SetSearch(search)
			FormatView(out(cmd), b.View(), b.Filter())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "all, favorites, completed or pending")
	cmd.Flags().StringVarP(&category, "category", "c", "All", "All or one of Work, Personal, Shopping, Health, Urgent")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive text to find in title or description")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var description, category string
	var favorite, autoCategory bool
	cmd := &cobra.Command{
		Use:     "add <title...>",
		Aliases: []string{"create"},
		Short:   "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			patch := models.TaskPatch{Title: &title}
			if description != "" {
				patch.Description = &description
			}
			if favorite {
				patch.IsFavorite = &favorite
			}
			if category != "" {
				c, err := models.ParseCategory(category)
				if err != nil {
					return err
				}
				patch.Category = &c
			}

			b, release, err := a.board(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			if patch.Category == nil && autoCategory && strings.TrimSpace(title) != "" {
				c := b.SuggestCategory(cmd.Context(), title, description)
				patch.Category = &c
			}

			task, err := b.Create(cmd.Context(), patch)
			if err != nil {
				return err
			}
			FormatTask(out(cmd), task)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Work, Personal, Shopping, Health or Urgent (default Personal)")
	cmd.Flags().BoolVarP(&favorite, "favorite", "f", false, "mark as favorite")
	cmd.Flags().BoolVar(&autoCategory, "suggest-category", false, "let the AI pick the category when --category is not given")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, description, category string
	var favorite, completed bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireID(args)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var patch models.TaskPatch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("category") {
				c, err := models.ParseCategory(category)
				if err != nil {
					return err
				}
				patch.Category = &c
			}
			if flags.Changed("favorite") {
				patch.IsFavorite = &favorite
			}
			if flags.Changed("completed") {
				patch.Completed = &completed
			}

			b, release, err := a.board(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			task, err := b.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			FormatTask(out(cmd), task)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description (empty clears it)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "favorite flag")
	cmd.Flags().BoolVar(&completed, "completed", false, "completed flag")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle whether a task is completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireID(args)
			if err != nil {
				return err
			}
			b, release, err := a.board(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer release()

			if err := b.ToggleCompleted(cmd.Context(), id); err != nil {
				return err
			}
			if task, ok := b.Task(id); ok {
				FormatTask(out(cmd), task)
			}
			return nil
		},
	}
}

func newFavCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "fav <id>",
		Aliases: []string{"favorite"},
		Short:   "Toggle whether a task is a favorite",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireID(args)
			if err != nil {
				return err
			}
			b, release, err := a.board(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			task, err := b.ToggleFavorite(cmd.Context(), id)
			if err != nil {
				return err
			}
			FormatTask(out(cmd), task)
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireID(args)
			if err != nil {
				return err
			}
			b, release, err := a.board(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer release()

			if err := b.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted %s\n", id)
			return nil
		},
	}
}

func newSuggestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <id>",
		Short: "Ask the AI for subtasks of a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireID(args)
			if err != nil {
				return err
			}
			b, release, err := a.board(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer release()

			s, err := b.Suggest(cmd.Context(), id)
			if err != nil {
				return err
			}
			FormatSuggestion(out(cmd), s)
			return nil
		},
	}
}

func newCategorizeCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "categorize <title...>",
		Short: "Ask the AI which category fits a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, release, err := a.board(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer release()

			fmt.Fprintln(out(cmd), b.SuggestCategory(cmd.Context(), strings.Join(args, " "), description))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}
