package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const orderPaneWidth = 46

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0a84ff"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#30d158"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model defines the application state
type Model struct {
	client    *APIClient
	sessionID string
	messages  []Message
	order     Order

	transcript viewport.Model
	orderView  table.Model
	textInput  textinput.Model
	spinner    spinner.Model

	loading bool
	status  string
	error   string
}

// Custom message types for the tea.Model
type sessionMsg struct {
	session *Session
}

type turnMsg struct {
	turn *Turn
}

type orderMsg struct {
	order *Order
}

type confirmMsg struct {
	message string
}

type errorMsg struct {
	err string
}

func initialModel(client *APIClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Escribe tu mensaje..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	columns := []table.Column{
		{Title: "Item", Width: 20},
		{Title: "Cant.", Width: 5},
		{Title: "Subtotal", Width: 10},
	}
	orderTable := table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
	)

	return Model{
		client:     client,
		transcript: viewport.New(80, 20),
		orderView:  orderTable,
		textInput:  ti,
		spinner:    s,
		loading:    true,
	}
}

// Init starts a session
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, createSession(m.client), textinput.Blink)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w, h := docStyle.GetFrameSize()
		m.transcript.Width = max(msg.Width-w-orderPaneWidth-2, 20)
		m.transcript.Height = max(msg.Height-h-6, 5)
		m.textInput.Width = m.transcript.Width - 4
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+o":
			if m.sessionID != "" && !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, confirmOrder(m.client, m.sessionID))
			}
			return m, nil
		case "ctrl+x":
			if m.sessionID != "" && !m.loading {
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, cancelOrder(m.client, m.sessionID))
			}
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.textInput.Value())
			if text == "" || m.loading || m.sessionID == "" {
				return m, nil
			}
			m.textInput.SetValue("")
			m.messages = append(m.messages, Message{Role: "user", Content: text})
			m.refreshTranscript()
			m.loading = true
			m.error = ""
			return m, tea.Batch(m.spinner.Tick, sendMessage(m.client, m.sessionID, text))
		}

	case sessionMsg:
		m.loading = false
		m.sessionID = msg.session.ID
		m.messages = append(m.messages, msg.session.Messages...)
		m.setOrder(msg.session.Order)
		m.refreshTranscript()
		return m, nil

	case turnMsg:
		m.loading = false
		m.messages = append(m.messages, Message{Role: "assistant", Content: msg.turn.Reply})
		m.status = msg.turn.Intent
		m.refreshTranscript()
		return m, fetchOrder(m.client, m.sessionID)

	case orderMsg:
		m.setOrder(*msg.order)
		return m, nil

	case confirmMsg:
		m.loading = false
		m.messages = append(m.messages, Message{Role: "assistant", Content: msg.message})
		m.refreshTranscript()
		return m, fetchOrder(m.client, m.sessionID)

	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)
	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	left := titleStyle.Render("maitred") + "\n\n" + m.transcript.View()

	right := titleStyle.Render("Tu pedido") + "\n\n" + m.orderView.View() +
		fmt.Sprintf("\n\nTotal: $%.2f", m.order.Total)

	footer := m.textInput.View()
	if m.loading {
		footer = m.spinner.View() + " " + footer
	}
	if m.error != "" {
		footer += "\n" + errorStyle.Render(m.error)
	} else if m.status != "" {
		footer += "\n" + successStyle.Render(m.status)
	}
	footer += "\n" + helpStyle.Render("enter: enviar • ctrl+o: confirmar pedido • ctrl+x: cancelar pedido • esc: salir")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.transcript.Width+2).Render(left),
		lipgloss.NewStyle().Width(orderPaneWidth).Render(right))
	return docStyle.Render(body + "\n\n" + footer)
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(renderTranscript(m.messages, m.transcript.Width))
	m.transcript.GotoBottom()
}

func (m *Model) setOrder(order Order) {
	m.order = order
	m.orderView.SetRows(orderRows(order))
}

// renderTranscript formats the conversation for the viewport
func renderTranscript(messages []Message, width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	var b strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case "user":
			b.WriteString(wrap.Render(userStyle.Render("Tú: ") + msg.Content))
		default:
			b.WriteString(wrap.Render(assistantStyle.Render("🤖 ") + msg.Content))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

// orderRows converts order lines to table rows
func orderRows(order Order) []table.Row {
	rows := make([]table.Row, len(order.Lines))
	for i, line := range order.Lines {
		rows[i] = table.Row{line.Item, fmt.Sprintf("%d", line.Quantity), fmt.Sprintf("$%.2f", line.Subtotal)}
	}
	return rows
}

func createSession(client *APIClient) tea.Cmd {
	return func() tea.Msg {
		sess, err := client.CreateSession()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error creating session: %v", err)}
		}
		return sessionMsg{session: sess}
	}
}

func sendMessage(client *APIClient, sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		turn, err := client.SendMessage(sessionID, text)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error sending message: %v", err)}
		}
		return turnMsg{turn: turn}
	}
}

func fetchOrder(client *APIClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		order, err := client.GetOrder(sessionID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching order: %v", err)}
		}
		return orderMsg{order: order}
	}
}

// confirmOrder confirms through the order endpoint. A refusal still carries
// the customer message, which is shown in the transcript.
func confirmOrder(client *APIClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		message, err := client.ConfirmOrder(sessionID)
		if err != nil && message == "" {
			return errorMsg{err: fmt.Sprintf("Error confirming order: %v", err)}
		}
		return confirmMsg{message: message}
	}
}

func cancelOrder(client *APIClient, sessionID string) tea.Cmd {
	return func() tea.Msg {
		message, err := client.CancelOrder(sessionID)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error canceling order: %v", err)}
		}
		return confirmMsg{message: message}
	}
}

func main() {
	client := NewAPIClient()
	if ok, err := client.CheckHealth(); !ok {
		fmt.Printf("API server at %s is not available: %v\n", client.BaseURL, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
	if m, ok := final.(Model); ok && m.sessionID != "" {
		_ = client.DeleteSession(m.sessionID)
	}
}
