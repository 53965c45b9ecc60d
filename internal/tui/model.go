// Package tui is a terminal front end for the community feed engine.
// Scrolling past the last visible post plays the role of the sentinel
// element: it fires the engine's load-more trigger.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deephealth-lab/community/internal/feed"
	"github.com/deephealth-lab/community/internal/models"
)

const requestTimeout = 15 * time.Second

type composeMode int

const (
	composeNone composeMode = iota
	composePost
	composeComment
)

type feedLoadedMsg struct{ loaded bool }

type detailLoadedMsg struct{ postID string }

type mutationDoneMsg struct{ err error }

type postCreatedMsg struct{ err error }

type errMsg struct{ err error }

type clearStatusMsg struct{}

type Model struct {
	engine *feed.Engine

	posts  []models.Post
	cursor int

	inDetail bool

	compose textinput.Model
	mode    composeMode

	width   int
	height  int
	loading bool
	status  string
	err     error
}

func NewModel(engine *feed.Engine) Model {
	input := textinput.New()
	input.Placeholder = "Share your latest findings or ask a question..."
	input.CharLimit = 2000

	return Model{
		engine:  engine,
		compose: input,
	}
}

func (m Model) Init() tea.Cmd {
	return loadMoreCmd(m.engine)
}

func loadMoreCmd(engine *feed.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		loaded, err := engine.LoadMore(ctx)
		if err != nil {
			return errMsg{err}
		}
		return feedLoadedMsg{loaded: loaded}
	}
}

func resolveDetailCmd(engine *feed.Engine, postID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if _, err := engine.ResolveDetail(ctx, postID); err != nil {
			return errMsg{err}
		}
		return detailLoadedMsg{postID: postID}
	}
}

func toggleCmd(engine *feed.Engine, postID string, like bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		if like {
			err = engine.ToggleLike(ctx, postID)
		} else {
			err = engine.ToggleDislike(ctx, postID)
		}
		return mutationDoneMsg{err}
	}
}

func commentCmd(engine *feed.Engine, postID, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutationDoneMsg{engine.AddComment(ctx, postID, content, nil)}
	}
}

func createPostCmd(engine *feed.Engine, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := engine.CreatePost(ctx, content)
		return postCreatedMsg{err}
	}
}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode != composeNone {
			return m.updateCompose(msg)
		}
		return m.updateKeys(msg)

	case feedLoadedMsg:
		m.loading = false
		m.posts = m.engine.Posts()
		if m.cursor >= len(m.posts) && len(m.posts) > 0 {
			m.cursor = len(m.posts) - 1
		}
		return m, nil

	case detailLoadedMsg:
		m.posts = m.engine.Posts()
		return m, nil

	case mutationDoneMsg:
		m.posts = m.engine.Posts()
		if msg.err != nil {
			m.status = "action failed: " + msg.err.Error()
			return m, clearStatusCmd()
		}
		return m, nil

	case postCreatedMsg:
		m.posts = m.engine.Posts()
		if msg.err != nil {
			m.status = "post failed: " + msg.err.Error()
		} else {
			m.status = "posted"
			m.cursor = 0
		}
		return m, clearStatusCmd()

	case errMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.err.Error()
		return m, clearStatusCmd()

	case clearStatusMsg:
		m.status = ""
		return m, nil
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.inDetail {
			return m, nil
		}
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.inDetail {
			return m, nil
		}
		if m.cursor < len(m.posts)-1 {
			m.cursor++
			return m, nil
		}
		// Past the last rendered post: the sentinel is visible.
		if m.engine.HasMore() && !m.loading {
			m.loading = true
			return m, loadMoreCmd(m.engine)
		}
		return m, nil

	case "enter":
		if m.inDetail || len(m.posts) == 0 {
			return m, nil
		}
		postID := m.posts[m.cursor].ID
		m.engine.OpenDetail(postID)
		m.inDetail = true
		return m, resolveDetailCmd(m.engine, postID)

	case "esc":
		if m.inDetail {
			m.engine.CloseDetail()
			m.inDetail = false
		}
		return m, nil

	case "l", "d":
		postID, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		cmd := toggleCmd(m.engine, postID, msg.String() == "l")
		// Snapshot right away so the optimistic flip paints this frame.
		m.posts = m.engine.Posts()
		return m, cmd

	case "c":
		if _, ok := m.selectedID(); !ok {
			return m, nil
		}
		m.mode = composeComment
		m.compose.Placeholder = "Write a comment..."
		m.compose.Focus()
		return m, textinput.Blink

	case "n":
		if m.inDetail {
			return m, nil
		}
		m.mode = composePost
		m.compose.Placeholder = "Share your latest findings or ask a question..."
		m.compose.Focus()
		return m, textinput.Blink

	case "r":
		if m.inDetail || m.loading {
			return m, nil
		}
		m.engine.Reset(feed.SortLatest, feed.FilterAll)
		m.posts = nil
		m.cursor = 0
		m.loading = true
		return m, loadMoreCmd(m.engine)
	}

	return m, nil
}

func (m Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = composeNone
		m.compose.Reset()
		m.compose.Blur()
		return m, nil

	case "enter":
		content := m.compose.Value()
		mode := m.mode
		m.mode = composeNone
		m.compose.Reset()
		m.compose.Blur()

		if mode == composePost {
			return m, createPostCmd(m.engine, content)
		}
		if postID, ok := m.selectedID(); ok {
			return m, commentCmd(m.engine, postID, content)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	return m, cmd
}

// selectedID returns the post the next action applies to: the open detail
// when one is up, otherwise the post under the cursor.
func (m Model) selectedID() (string, bool) {
	if m.inDetail {
		if id := m.engine.OpenDetailID(); id != "" {
			return id, true
		}
		return "", false
	}
	if len(m.posts) == 0 {
		return "", false
	}
	return m.posts[m.cursor].ID, true
}
