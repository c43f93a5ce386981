package profile

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/teams-cli/internal/application"
	"github.com/bnema/teams-cli/internal/domain"
	"github.com/bnema/teams-cli/internal/mutation"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// Status is the cache status of the rendered entity. Zero means fresh.
	Status domain.CacheStatus
	// SelfID marks the logged-in user in team listings.
	SelfID domain.EntityID
}

// Profile renders a profile without starting a bubbletea program, for
// callers that already run one.
func Profile(view application.ProfileView, opts RenderOptions) string {
	return renderProfile(view, opts, newStyles())
}

func renderProfile(view application.ProfileView, opts RenderOptions, s styles) string {
	user := view.User
	title := s.name.Render(userTitle(user))
	if view.IsSelf {
		title += " " + s.self.Render("(you)")
	}

	lines := []string{
		s.title.Render("Profile"),
		title,
		field(s, "email", user.Email),
		field(s, "image", user.Image),
	}
	if line := statusLine(opts.Status, s); line != "" {
		lines = append(lines, line)
	}
	for _, m := range view.Pending {
		lines = append(lines, pendingLine(m, opts.Now, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProject(view application.ProjectView, s styles) string {
	project := view.Project
	owner := "unknown"
	if view.Owner.ID != 0 {
		owner = userTitle(view.Owner)
	}
	if view.IsOwner {
		owner += " " + s.self.Render("(you)")
	}

	lines := []string{
		s.name.Render(fmt.Sprintf("Project: %s (#%s)", displayName(project.Name), project.ID)),
		field(s, "description", project.Description),
		field(s, "image", project.Image),
		s.label.Render("owner: ") + s.detail.Render(owner),
		s.header.Render(fmt.Sprintf("members: %d", len(project.TeamIDs()))),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTeam(view application.TeamView, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Team of %s", displayName(view.Project.Name))),
		s.header.Render(fmt.Sprintf("members: %d", len(view.Members))),
	}

	if len(view.Members) == 0 {
		lines = append(lines, s.empty.Render("No members."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	items := make([]string, 0, len(view.Members))
	for _, member := range view.Members {
		line := "- " + userTitle(member)
		var tags []string
		if member.ID == view.Project.OwnerID {
			tags = append(tags, "owner")
		}
		if opts.SelfID != 0 && member.ID == opts.SelfID {
			tags = append(tags, "you")
		}
		if len(tags) > 0 {
			line += " " + s.self.Render("("+strings.Join(tags, ", ")+")")
		}
		items = append(items, s.listItem.Render(line))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, items...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(s styles, label, value string) string {
	if strings.TrimSpace(value) == "" {
		return s.label.Render(label+": ") + s.empty.Render("n/a")
	}
	return s.label.Render(label+": ") + s.detail.Render(value)
}

func userTitle(user domain.User) string {
	return fmt.Sprintf("%s (#%s)", user.DisplayName(), user.ID)
}

func displayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "unnamed"
	}
	return trimmed
}

func statusLine(status domain.CacheStatus, s styles) string {
	switch status {
	case domain.StatusStale:
		return s.warning.Render("[stale]")
	case domain.StatusPending:
		return s.pending.Render("refreshing...")
	case domain.StatusFailed:
		return s.warning.Render("[last refresh failed]")
	default:
		return ""
	}
}

func pendingLine(m mutation.PendingMutation, now time.Time, s styles) string {
	line := fmt.Sprintf("saving %s: %q -> %q", m.Field, m.PreviousValue, m.NewValue)
	if age := formatAge(m.SubmittedAt, now); age != "" {
		line += " (" + age + ")"
	}
	return s.pending.Render(line)
}

func formatAge(submittedAt, now time.Time) string {
	if submittedAt.IsZero() || now.IsZero() {
		return ""
	}

	elapsed := now.Sub(submittedAt)
	if elapsed < time.Second {
		return "just now"
	}
	if elapsed < time.Minute {
		seconds := int(math.Floor(elapsed.Seconds()))
		return fmt.Sprintf("%ds ago", seconds)
	}
	return fmt.Sprintf("since %s", submittedAt.Format("15:04"))
}
