package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/deephealth-lab/community/internal/feed"
	"github.com/deephealth-lab/community/internal/models"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	authorStyle   = lipgloss.NewStyle().Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	likedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dislikedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	commentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Community Feed"))
	b.WriteString("\n\n")

	if m.inDetail {
		m.renderDetail(&b)
	} else {
		m.renderList(&b)
	}

	if m.mode != composeNone {
		b.WriteString("\n" + m.compose.View() + "\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status))
	}

	b.WriteString("\n" + helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderList(b *strings.Builder) {
	if len(m.posts) == 0 && !m.loading {
		b.WriteString(metaStyle.Render("No posts yet. Press n to start the conversation."))
		b.WriteString("\n")
		return
	}

	for i, p := range m.posts {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(marker + authorStyle.Render(p.AuthorName))
		b.WriteString(metaStyle.Render("  " + timeAgo(p.CreatedAt)))
		b.WriteString("\n  " + truncate(p.Content, 90) + "\n")
		b.WriteString("  " + m.reactionLine(p) + "\n\n")
	}

	switch {
	case m.loading:
		b.WriteString(metaStyle.Render("loading…") + "\n")
	case !m.engine.HasMore():
		b.WriteString(metaStyle.Render("No more posts") + "\n")
	}
}

func (m Model) renderDetail(b *strings.Builder) {
	post, loading := m.engine.Detail()
	if post == nil {
		b.WriteString(metaStyle.Render("loading post…") + "\n")
		return
	}

	b.WriteString(authorStyle.Render(post.AuthorName))
	b.WriteString(metaStyle.Render("  " + timeAgo(post.CreatedAt)))
	b.WriteString("\n" + post.Content + "\n")
	b.WriteString(m.reactionLine(*post) + "\n\n")

	b.WriteString(titleStyle.Render("Comments") + "\n")
	if loading {
		b.WriteString(metaStyle.Render("loading comments…") + "\n")
		return
	}
	if len(post.Comments) == 0 {
		b.WriteString(metaStyle.Render("No comments yet.") + "\n")
		return
	}

	for _, node := range feed.FlattenCommentTree(feed.BuildCommentTree(post.Comments)) {
		indent := strings.Repeat("  ", node.Depth+1)
		b.WriteString(indent + authorStyle.Render(node.AuthorName))
		b.WriteString(metaStyle.Render("  " + timeAgo(node.CreatedAt)))
		b.WriteString("\n" + indent + commentStyle.Render(node.Content) + "\n")
	}
}

func (m Model) reactionLine(p models.Post) string {
	likes := fmt.Sprintf("▲ %d", len(p.Likes))
	dislikes := fmt.Sprintf("▼ %d", len(p.Dislikes))
	me := m.engine.UserID()
	if containsUser(p.Likes, me) {
		likes = likedStyle.Render(likes)
	}
	if containsUser(p.Dislikes, me) {
		dislikes = dislikedStyle.Render(dislikes)
	}
	return fmt.Sprintf("%s  %s  %s", likes, dislikes,
		metaStyle.Render(fmt.Sprintf("💬 %d", p.CommentsCount)))
}

func (m Model) helpLine() string {
	if m.mode != composeNone {
		return "enter send • esc cancel"
	}
	if m.inDetail {
		return "l like • d dislike • c comment • esc back • q quit"
	}
	return "↑/↓ move • enter open • l like • d dislike • c comment • n new post • r refresh • q quit"
}

func containsUser(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dy", int(d.Hours()/(24*365)))
	}
}
