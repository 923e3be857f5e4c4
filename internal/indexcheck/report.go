package indexcheck

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Check names a check; the names double as metric labels.
type Check string

const (
	CheckRobots          Check = "robots"
	CheckPrerender       Check = "prerender"
	CheckMetaDescription Check = "meta_description"
	CheckJSONLD          Check = "json_ld"
	CheckOpenGraph       Check = "open_graph"
	CheckLanguage        Check = "language"
	CheckLive            Check = "live"
)

// Finding is the result of one check.
type Finding struct {
	Check   Check
	Status  Status
	Message string
}

// RouteResult groups the findings of one sitemap URL.
type RouteResult struct {
	URL      string
	Path     string
	File     string
	Findings []Finding
}

// Failed reports whether any check of the route failed.
func (r RouteResult) Failed() bool {
	for _, f := range r.Findings {
		if f.Status == StatusFail {
			return true
		}
	}

	return false
}

// Status returns the worst status among the route's findings.
func (r RouteResult) Status() Status {
	worst := StatusPass
	for _, f := range r.Findings {
		switch f.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			worst = StatusWarn
		case StatusPass:
		}
	}

	return worst
}

// Report is the outcome of an indexation run.
type Report struct {
	Robots []Finding
	Routes []RouteResult
	Live   bool
}

func (r *Report) count(status Status, check Check) int {
	n := 0
	for _, f := range r.Robots {
		if f.Status == status && (check == "" || f.Check == check) {
			n++
		}
	}
	for _, route := range r.Routes {
		for _, f := range route.Findings {
			if f.Status == status && (check == "" || f.Check == check) {
				n++
			}
		}
	}

	return n
}

// Failures returns the number of failed checks; an empty check counts all.
func (r *Report) Failures(check Check) int { return r.count(StatusFail, check) }

// Warnings returns the number of warnings; an empty check counts all.
func (r *Report) Warnings(check Check) int { return r.count(StatusWarn, check) }

// Failed reports whether the run must exit non-zero.
func (r *Report) Failed() bool { return r.Failures("") > 0 }

// Render prints the report: robots.txt findings, one line per route with its
// non-passing findings indented below, and a summary.
func Render(w io.Writer, r *Report) error {
	re := lipgloss.NewRenderer(w)
	styles := map[Status]lipgloss.Style{
		StatusPass: re.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		StatusWarn: re.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		StatusFail: re.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
	dim := re.NewStyle().Faint(true)
	title := re.NewStyle().Bold(true).Underline(true)

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("%s\n", title.Render("robots.txt"))
	for _, f := range r.Robots {
		printf("  %s %s\n", styles[f.Status].Render(string(f.Status)), f.Message)
	}

	printf("\n%s\n", title.Render("routes"))
	for _, route := range r.Routes {
		st := route.Status()
		printf("  %s %s %s\n", styles[st].Render(string(st)), route.Path, dim.Render(route.File))
		for _, f := range route.Findings {
			if f.Status == StatusPass {
				continue
			}
			printf("      %s %s: %s\n", styles[f.Status].Render(string(f.Status)), f.Check, f.Message)
		}
	}

	failedRoutes := 0
	for _, route := range r.Routes {
		if route.Failed() {
			failedRoutes++
		}
	}
	live := "skipped"
	if r.Live {
		live = fmt.Sprintf("%d failed", r.Failures(CheckLive))
	}

	printf("\n%s\n", title.Render("summary"))
	printf("  routes:     %d (%d failed)\n", len(r.Routes), failedRoutes)
	printf("  prerender:  %d failed\n", r.Failures(CheckPrerender))
	printf("  live:       %s\n", live)
	printf("  warnings:   %d\n", r.Warnings(""))
	if r.Failed() {
		printf("  result:     %s\n", styles[StatusFail].Render("FAIL"))
	} else {
		printf("  result:     %s\n", styles[StatusPass].Render("PASS"))
	}

	return err
}
