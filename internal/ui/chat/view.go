// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	core "github.com/jeranaias/cortex-tui/internal/chat"
	"github.com/jeranaias/cortex-tui/internal/model"
	"github.com/jeranaias/cortex-tui/internal/util"
)

// tabTitleWidth caps each tab's display width in the header.
const tabTitleWidth = 22

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "starting cortex..."
	}

	body := m.viewport.View()
	if m.overlay != overlayNone {
		body = m.overlayView()
	}

	sections := []string{
		m.headerView(),
		body,
	}
	if m.help.ShowAll {
		sections = append(sections, m.help.View(m.keys))
	}
	sections = append(sections, m.inputView(), m.statusView())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// HEADER
// =============================================================================

// headerView renders the brand and one tab per open session.
func (m Model) headerView() string {
	parts := []string{m.theme.HeaderBrand.Render("cortex")}

	active := m.manager.Active()
	for _, s := range m.manager.Sessions() {
		title := s.Title()
		if title == "" {
			title = "New chat"
		}
		title = util.TruncateWidth(title, tabTitleWidth)
		if s.InFlight() {
			title = m.spinner.View() + " " + title
		}

		switch {
		case s == active:
			parts = append(parts, m.theme.TabActive.Render(title))
		case s.InFlight():
			parts = append(parts, m.theme.TabStreaming.Render(title))
		default:
			parts = append(parts, m.theme.Tab.Render(title))
		}
	}

	row := strings.Join(parts, " ")
	return m.theme.Header.Width(m.width).Render(row)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// renderConversation renders the active session's log, streaming tail,
// error, and follow-up suggestions into viewport content.
func (m *Model) renderConversation() string {
	s := m.active()
	if s == nil {
		return ""
	}

	var b strings.Builder
	msgs := s.Messages()

	if len(msgs) == 0 && !s.InFlight() {
		b.WriteString(m.theme.StatusNote.Render("No messages yet. Type below to start the conversation."))
		b.WriteString("\n")
		return b.String()
	}

	for i, msg := range msgs {
		b.WriteString(m.renderMessage(i, msg))
		b.WriteString("\n\n")
	}

	if s.InFlight() {
		b.WriteString(m.theme.AssistantLabel.Render("Assistant"))
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
		if partial := s.Partial(); partial != "" {
			b.WriteString(m.theme.StreamingText.Render(partial))
			b.WriteString("\n")
		}
		return b.String()
	}

	if err := s.Err(); err != nil {
		b.WriteString(m.renderError(err))
		b.WriteString("\n")
	}

	if m.prefs.ShowFollowUps {
		if fups := s.FollowUps(); len(fups) > 0 {
			b.WriteString(m.renderFollowUps(fups))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderMessage renders one committed message with pin and selection
// markers.
func (m *Model) renderMessage(i int, msg *model.Message) string {
	var head strings.Builder

	if i == m.selected {
		head.WriteString(m.theme.SelectedMark.Render("▌ "))
	}

	switch msg.Role {
	case model.RoleUser:
		head.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
	default:
		head.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
	}

	if msg.IsPinned {
		head.WriteString(" " + m.theme.PinMarker.Render("⚑ pinned"))
	}
	if msg.SystemPromptType != "" && msg.SystemPromptType != core.ModeChat.PromptType() {
		head.WriteString(" " + m.theme.MessageMeta.Render("["+msg.SystemPromptType+"]"))
	}

	body := msg.Content
	if msg.Role == model.RoleAssistant {
		body = m.markdown.Render(msg.Content)
	} else {
		body = m.theme.UserBody.Width(max(m.width-4, 20)).Render(body)
	}

	return head.String() + "\n" + body
}

// renderError renders the session error box.
func (m *Model) renderError(err error) string {
	content := m.theme.ErrorTitle.Render("Error") + "\n" +
		m.theme.ErrorMessage.Render(err.Error())
	return m.theme.ErrorBox.Width(max(m.width-4, 20)).Render(content)
}

// renderFollowUps renders suggestion lines with their function-key
// hints.
func (m *Model) renderFollowUps(fups []model.FollowUpSuggestion) string {
	var b strings.Builder
	b.WriteString(m.theme.FollowUpHeader.Render("Follow-up questions"))
	b.WriteString("\n")
	for i, f := range fups {
		b.WriteString(m.theme.FollowUpItem.Render(fmt.Sprintf("F%d  %s", i+1, f.Text)))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) inputView() string {
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

// statusView renders the mode badge, model, token rate, and either the
// transient status message or key hints.
func (m Model) statusView() string {
	s := m.active()

	var parts []string
	if s != nil {
		parts = append(parts, m.modeBadge(s.Mode()))
		name := s.ModelName()
		if name == "" {
			name = "no model (C-e)"
		}
		parts = append(parts, name)
		if m.prefs.ShowTokenRate {
			if rate := s.TokenRate(); rate > 0 {
				parts = append(parts, fmt.Sprintf("%.1f tok/s", rate))
			}
		}
	}

	if m.statusMsg != "" {
		parts = append(parts, m.theme.StatusNote.Render(m.statusMsg))
	} else if !m.help.ShowAll {
		parts = append(parts, m.help.View(m.keys))
	}

	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  │  "))
}

func (m Model) modeBadge(mode core.BehaviorMode) string {
	switch mode {
	case core.ModeInternet:
		return m.theme.ModeInternet.Render("internet")
	case core.ModeAcademic:
		return m.theme.ModeAcademic.Render("academic")
	default:
		return m.theme.ModeChat.Render("chat")
	}
}

// =============================================================================
// OVERLAYS
// =============================================================================

// overlayView renders the chat or model picker centered over the
// viewport area.
func (m Model) overlayView() string {
	var title string
	var lines []string
	var hint string

	switch m.overlay {
	case overlayChats:
		title = "Open chat"
		hint = "enter open · n new · d delete · esc close"
		if len(m.chatList) == 0 {
			lines = append(lines, m.theme.ListMeta.Render("no saved chats"))
		}
		for i, c := range m.chatList {
			label := util.TruncateWidth(c.Title, 42)
			meta := c.UpdatedAt.Local().Format("2006-01-02 15:04")
			row := fmt.Sprintf("%-44s %s", label, m.theme.ListMeta.Render(meta))
			if i == m.listIndex {
				lines = append(lines, m.theme.ListItemSelected.Render(row))
			} else {
				lines = append(lines, m.theme.ListItem.Render(row))
			}
		}

	case overlayModels:
		title = "Switch model"
		hint = "enter select · esc close"
		if len(m.modelList) == 0 {
			lines = append(lines, m.theme.ListMeta.Render("no installed models"))
		}
		for i, info := range m.modelList {
			size := fmt.Sprintf("%.1f GB", float64(info.Size)/1e9)
			row := fmt.Sprintf("%-36s %s", util.TruncateWidth(info.Name, 34), m.theme.ListMeta.Render(size))
			if i == m.listIndex {
				lines = append(lines, m.theme.ListItemSelected.Render(row))
			} else {
				lines = append(lines, m.theme.ListItem.Render(row))
			}
		}
	}

	content := m.theme.OverlayTitle.Render(title) + "\n\n" +
		strings.Join(lines, "\n") + "\n\n" +
		m.theme.ListMeta.Render(hint)

	box := m.theme.OverlayBox.Render(content)
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}
