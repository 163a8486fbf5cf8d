package services

import (
	"fmt"
	"io"
	"strings"

	"jira-sprint-worklogs/internal/models"

	"github.com/ternarybob/banner"
)

// Renderer prints a report as one coloured day table per sprint.
type Renderer struct {
	out         io.Writer
	hoursPerDay float64
	noColor     bool
}

func NewRenderer(out io.Writer, hoursPerDay float64, noColor bool) *Renderer {
	return &Renderer{
		out:         out,
		hoursPerDay: hoursPerDay,
		noColor:     noColor,
	}
}

func (r *Renderer) Render(report *models.Report) error {
	for _, sprint := range report.Sprints {
		if err := r.renderSprint(sprint); err != nil {
			return err
		}
	}

	if len(report.SprintlessWorklogs) > 0 {
		return r.renderSprintless(report.SprintlessWorklogs)
	}
	return nil
}

func (r *Renderer) renderSprint(sprint *models.Sprint) error {
	title := fmt.Sprintf("\nSprint %q - %s", sprint.Name, sprint.State)
	if err := r.line(banner.ColorGreen, title); err != nil {
		return err
	}

	for i, day := range sprint.Days() {
		color := banner.ColorWhite
		if i%2 == 0 {
			color = banner.ColorCyan
		}
		if err := r.line(color, r.formatDay(day)); err != nil {
			return err
		}
	}
	return nil
}

// formatDay renders e.g. "    24-01-02 - Tue | 1.50h / 0.19d | (ABC-1 - 1.50h)".
func (r *Renderer) formatDay(day *models.Day) string {
	entries := make([]string, 0, len(day.Worklogs))
	for _, w := range day.Worklogs {
		entries = append(entries, fmt.Sprintf("(%s - %.2fh)", w.IssueKey, models.Round2(w.Hours())))
	}

	list := strings.Join(entries, ", ")
	if list == "" {
		list = "-"
	}

	hours := day.Hours()
	return fmt.Sprintf("    %s - %s | %.2fh / %.2fd | %s",
		day.Date.Format("06-01-02"),
		day.Date.Weekday().String()[:3],
		models.Round2(hours),
		models.Round2(hours/r.hoursPerDay),
		list)
}

func (r *Renderer) renderSprintless(worklogs []*models.Worklog) error {
	header := fmt.Sprintf("\n⚠ %d worklog(s) outside every known sprint", len(worklogs))
	if err := r.line(banner.ColorYellow, header); err != nil {
		return err
	}

	for _, w := range worklogs {
		row := fmt.Sprintf("    %s - %s | (%s - %.2fh)",
			w.LogDate.Format("06-01-02"),
			w.LogDate.Weekday().String()[:3],
			w.IssueKey,
			models.Round2(w.Hours()))
		if err := r.line(banner.ColorYellow, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) line(color, text string) error {
	var err error
	if r.noColor {
		_, err = fmt.Fprintln(r.out, text)
	} else {
		_, err = fmt.Fprintf(r.out, "%s%s%s\n", color, text, banner.ColorReset)
	}
	return err
}
