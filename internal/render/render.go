// Package render provides pure renderers over a mirror snapshot. Neither
// renderer touches the mirror; both are plain functions of the snapshot,
// so re-rendering after every mutation is always safe.
package render

import (
	"fmt"
	"html"
	"strings"

	"tasktrack/internal/mirror"
	"tasktrack/internal/remote"
)

const (
	// Separator is the divider line between sections of text output.
	Separator = "------------"

	untitled = "(untitled)"
)

// CompletionPercent returns done/total as a whole percentage, truncated.
// An empty list is 0% complete.
func CompletionPercent(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

// Text renders the sidebar and task panel as terminal output.
func Text(snap mirror.Snapshot) string {
	var b strings.Builder

	b.WriteString(Separator + "\n")
	b.WriteString("Lists\n")
	b.WriteString(Separator + "\n")

	if len(snap.Lists) == 0 {
		b.WriteString("no lists\n")
	}
	for _, list := range snap.Lists {
		marker := " "
		if list.ID == snap.CurrentID {
			marker = "*"
		}
		done := countDone(list.Tasks)
		fmt.Fprintf(&b, "%s [%d] %s (%d/%d)\n", marker, list.ID, displayName(list.Name), done, len(list.Tasks))
	}

	current, ok := currentList(snap)
	if !ok {
		b.WriteString(Separator + "\n")
		b.WriteString("no list selected\n")
		return b.String()
	}

	done := countDone(snap.Tasks)
	b.WriteString(Separator + "\n")
	fmt.Fprintf(&b, "%s (%d%% done)\n", displayName(current.Name), CompletionPercent(done, len(snap.Tasks)))
	b.WriteString(Separator + "\n")

	if len(snap.Tasks) == 0 {
		b.WriteString("no tasks\n")
	}
	for _, task := range snap.Tasks {
		box := " "
		if task.Completed {
			box = "x"
		}
		fmt.Fprintf(&b, "%4d  [%s] %s\n", task.ID, box, displayTitle(task.Title))
	}
	return b.String()
}

// HTML renders the snapshot as a standalone markup string. Every piece
// of user-supplied text is escaped before it is embedded.
func HTML(snap mirror.Snapshot) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>Task Tracker</title></head>\n<body>\n")
	b.WriteString("<aside>\n<ul class=\"task-lists\">\n")
	for _, list := range snap.Lists {
		class := "task-list"
		if list.ID == snap.CurrentID {
			class = "task-list selected"
		}
		done := countDone(list.Tasks)
		fmt.Fprintf(&b, "<li class=%q data-id=\"%d\">%s <span class=\"count\">%d/%d</span></li>\n",
			class, list.ID, html.EscapeString(displayName(list.Name)), done, len(list.Tasks))
	}
	b.WriteString("</ul>\n</aside>\n")

	current, ok := currentList(snap)
	if ok {
		done := countDone(snap.Tasks)
		b.WriteString("<section class=\"tasks\">\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(displayName(current.Name)))
		if current.Description != "" {
			fmt.Fprintf(&b, "<p class=\"description\">%s</p>\n", html.EscapeString(current.Description))
		}
		fmt.Fprintf(&b, "<p class=\"progress\">%d%% complete</p>\n", CompletionPercent(done, len(snap.Tasks)))
		b.WriteString("<ul>\n")
		for _, task := range snap.Tasks {
			class := "task"
			checked := ""
			if task.Completed {
				class = "task done"
				checked = " checked"
			}
			fmt.Fprintf(&b, "<li class=%q data-id=\"%d\"><input type=\"checkbox\"%s disabled> %s</li>\n",
				class, task.ID, checked, html.EscapeString(displayTitle(task.Title)))
		}
		b.WriteString("</ul>\n</section>\n")
	} else {
		b.WriteString("<section class=\"tasks\"><p>No list selected.</p></section>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func currentList(snap mirror.Snapshot) (remote.TaskList, bool) {
	for _, list := range snap.Lists {
		if list.ID == snap.CurrentID && snap.CurrentID != 0 {
			return list, true
		}
	}
	return remote.TaskList{}, false
}

func countDone(tasks []remote.Task) int {
	n := 0
	for _, task := range tasks {
		if task.Completed {
			n++
		}
	}
	return n
}

// displayTitle normalizes a task title for display.
// Empty or whitespace-only titles become "(untitled)"; newlines are
// replaced with spaces.
func displayTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return untitled
	}
	return title
}

// displayName normalizes a list name for display.
func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return untitled
	}
	return name
}
