package cli

import (
	"fmt"
	"io"
	"strings"

	"taskmaster/app/board"
	"taskmaster/app/models"
	"taskmaster/app/view"
)

// FormatTask writes one task line:
// "[x] * {ID}  {TITLE} ({CATEGORY})" followed by an indented description.
func FormatTask(w io.Writer, t models.Task) {
	check := " "
	if t.Completed {
		check = "x"
	}
	star := " "
	if t.IsFavorite {
		star = "*"
	}
	fmt.Fprintf(w, "[%s] %s %-8s %s (%s)\n", check, star, t.ID, normalizeTitle(t.Title), t.Category)
	if d := strings.TrimSpace(t.Description); d != "" {
		fmt.Fprintf(w, "             %s\n", strings.ReplaceAll(d, "\n", " "))
	}
}

// FormatView writes the visible tasks followed by the counts.
func FormatView(w io.Writer, st view.State, f view.Filter) {
	if len(st.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
	}
	for _, t := range st.Tasks {
		FormatTask(w, t)
	}
	fmt.Fprintf(w, "\n%d shown (status=%s, category=%s", len(st.Tasks), orDefault(string(f.Status), "all"), orDefault(string(f.Category), "All"))
	if f.Search != "" {
		fmt.Fprintf(w, ", search=%q", f.Search)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "all %d  favorites %d  completed %d  pending %d\n",
		st.Stats.Total, st.Stats.Favorites, st.Stats.Completed, st.Stats.Pending())
}

// FormatSuggestion writes the suggested subtasks as a numbered list.
func FormatSuggestion(w io.Writer, s board.Suggestion) {
	if !s.Available() {
		fmt.Fprintf(w, "No suggestions available for %q\n", s.Title)
		return
	}
	fmt.Fprintf(w, "Suggested subtasks for %q:\n", s.Title)
	for i, sub := range s.Subtasks {
		fmt.Fprintf(w, "%4d  %s\n", i+1, sub)
	}
}

// normalizeTitle keeps a title on one line and never blank.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
