package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/promptly-app/promptly/backend/pkg/client"
)

type phase int

const (
	phaseLogin phase = iota
	phaseChatList
	phaseChat
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedItem = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

type loggedInMsg struct {
	user client.User
	err  error
}

type chatsLoadedMsg struct {
	chats []client.Chat
	err   error
}

type sendDoneMsg struct{ err error }

type tickMsg struct{}

// tick keeps the chat view repainting while a send is outstanding, so the
// optimistic message and typing indicator show up before the reply lands.
func tick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

type model struct {
	api   *client.API
	vm    *client.ViewModel
	phase phase

	email      string
	password   string
	focusField int // 0=email, 1=password
	user       client.User

	chats    []client.Chat
	selected int

	input   string
	errText string
	width   int
}

func newModel(baseURL string) model {
	return model{api: client.New(baseURL), phase: phaseLogin}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) login(signup bool) tea.Cmd {
	email, password := m.email, m.password
	api := m.api
	return func() tea.Msg {
		ctx := context.Background()
		var user client.User
		var err error
		if signup {
			user, err = api.Signup(ctx, email, password, "", "")
		} else {
			user, err = api.Login(ctx, email, password)
		}
		return loggedInMsg{user: user, err: err}
	}
}

func (m model) loadChats() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		chats, err := api.History(context.Background())
		return chatsLoadedMsg{chats: chats, err: err}
	}
}

func (m model) sendMessage(content string) tea.Cmd {
	vm := m.vm
	return func() tea.Msg {
		return sendDoneMsg{err: vm.SendMessage(context.Background(), content)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loggedInMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.user = msg.user
		m.errText = ""
		m.phase = phaseChatList
		return m, m.loadChats()

	case chatsLoadedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.chats = msg.chats
		m.errText = ""
		return m, nil

	case sendDoneMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case tickMsg:
		if m.phase == phaseChat && m.vm != nil && m.vm.BotTyping() {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.phase {
	case phaseLogin:
		return m.handleLoginKey(msg)
	case phaseChatList:
		return m.handleListKey(msg)
	case phaseChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

func (m model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := &m.email
	if m.focusField == 1 {
		field = &m.password
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		m.focusField = 1 - m.focusField
	case tea.KeyEnter:
		if m.email == "" || m.password == "" {
			m.errText = "email and password are required"
			return m, nil
		}
		m.errText = ""
		return m, m.login(false)
	case tea.KeyCtrlS:
		if m.email == "" || m.password == "" {
			m.errText = "email and password are required"
			return m, nil
		}
		m.errText = ""
		return m, m.login(true)
	case tea.KeyBackspace:
		if len(*field) > 0 {
			*field = (*field)[:len(*field)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		*field += string(msg.Runes)
	}
	return m, nil
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.chats) {
			m.selected++
		}
	case "r":
		return m, m.loadChats()
	case "enter":
		chatID := ""
		if m.selected < len(m.chats) {
			chatID = m.chats[m.selected].ChatID
		}
		m.vm = client.NewViewModel(m.api, chatID)
		m.vm.Load(context.Background())
		m.phase = phaseChat
		m.input = ""
		m.errText = ""
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.phase = phaseChatList
		return m, m.loadChats()
	case tea.KeyEnter:
		content := strings.TrimSpace(m.input)
		if content == "" || m.vm.BotTyping() {
			return m, nil
		}
		m.input = ""
		return m, tea.Batch(m.sendMessage(content), tick())
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m model) View() string {
	switch m.phase {
	case phaseLogin:
		return m.viewLogin()
	case phaseChatList:
		return m.viewChatList()
	case phaseChat:
		return m.viewChat()
	}
	return ""
}

func (m model) viewLogin() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Promptly") + "\n\n")

	emailLabel, passwordLabel := "  email: ", "  password: "
	if m.focusField == 0 {
		emailLabel = "> email: "
	} else {
		passwordLabel = "> password: "
	}
	b.WriteString(emailLabel + m.email + "\n")
	b.WriteString(passwordLabel + strings.Repeat("*", len(m.password)) + "\n\n")
	b.WriteString(dimStyle.Render("enter login · ctrl+s sign up · tab switch field · ctrl+c quit") + "\n")

	if m.errText != "" {
		b.WriteString("\n" + errStyle.Render(m.errText) + "\n")
	}
	return b.String()
}

func (m model) viewChatList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your chats") + dimStyle.Render("  ("+m.user.Email+")") + "\n\n")

	for i, c := range m.chats {
		preview := c.LastMessage.Content
		if len(preview) > 60 {
			preview = preview[:60] + "…"
		}
		line := fmt.Sprintf("%s — %s", c.ChatID, preview)
		if i == m.selected {
			line = selectedItem.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	newLine := fmt.Sprintf("  %s", dimStyle.Render("[start a new chat]"))
	if m.selected == len(m.chats) {
		newLine = selectedItem.Render("> [start a new chat]")
	}
	b.WriteString(newLine + "\n\n")
	b.WriteString(dimStyle.Render("enter open · r refresh · q quit") + "\n")

	if m.errText != "" {
		b.WriteString("\n" + errStyle.Render(m.errText) + "\n")
	}
	return b.String()
}

func (m model) viewChat() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chat") + dimStyle.Render("  "+m.vm.ChatID()) + "\n\n")

	for _, msg := range m.vm.Messages() {
		switch msg.Role {
		case client.RoleUser:
			b.WriteString(userStyle.Render("you: ") + msg.Content + "\n")
		default:
			b.WriteString(botStyle.Render("bot: ") + msg.Content + "\n")
		}
	}

	if m.vm.BotTyping() {
		b.WriteString(dimStyle.Render("bot is typing…") + "\n")
	}
	if errText := m.vm.Err(); errText != "" {
		b.WriteString(errStyle.Render(errText) + "\n")
	} else if m.errText != "" {
		b.WriteString(errStyle.Render(m.errText) + "\n")
	}

	b.WriteString("\n> " + m.input + "\n")
	b.WriteString(dimStyle.Render("enter send · esc back · ctrl+c quit") + "\n")
	return b.String()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	baseURL := strings.TrimSpace(os.Getenv("PROMPTLY_SERVER"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	if _, err := tea.NewProgram(newModel(baseURL), tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("chatcli error: %v", err)
	}
}
