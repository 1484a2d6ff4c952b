// envsetup provides a lightweight .env configuration wizard.
// It runs automatically on first bot startup when no .env file exists,
// collecting the Discord token and optional LLM credentials for word
// meanings.
package envsetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jusunglee/typetoreveal/internal/llm"
)

const (
	envPath           = ".env"
	defaultSQLitePath = "./typetoreveal.db"
)

type step int

const (
	stepWelcome step = iota
	stepDiscord
	stepLLMProvider
	stepLLMKey
	stepConfirm
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	step         step
	discordToken string
	llmProvider  string
	llmAPIKey    string
	input        string
	path         string
	saved        bool
	err          error
	width        int
	height       int
}

func New() model {
	return model{
		step: stepWelcome,
		path: envPath,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEnter:
			return m.handleEnter()

		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
			return m, nil

		case tea.KeyRunes:
			m.input += string(msg.Runes)
			return m, nil

		case tea.KeySpace:
			m.input += " "
			return m, nil
		}
	}

	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil

	switch m.step {
	case stepWelcome:
		m.step = stepDiscord
		m.input = ""

	case stepDiscord:
		token := strings.TrimSpace(m.input)
		if token == "" {
			m.err = errors.New("Discord token is required")
			return m, nil
		}
		m.discordToken = token
		m.step = stepLLMProvider
		m.input = ""

	case stepLLMProvider:
		switch strings.TrimSpace(strings.ToLower(m.input)) {
		case "1", llm.ProviderAnthropic:
			m.llmProvider = llm.ProviderAnthropic
			m.step = stepLLMKey
		case "2", llm.ProviderGoogle:
			m.llmProvider = llm.ProviderGoogle
			m.step = stepLLMKey
		case "3", "skip", "":
			m.llmProvider = ""
			m.step = stepConfirm
		default:
			m.err = errors.New("Please enter 1 for Anthropic, 2 for Google or 3 to skip")
			return m, nil
		}
		m.input = ""

	case stepLLMKey:
		key := strings.TrimSpace(m.input)
		if key == "" {
			m.err = errors.New("API key is required")
			return m, nil
		}
		m.llmAPIKey = key
		m.step = stepConfirm
		m.input = ""

	case stepConfirm:
		choice := strings.TrimSpace(strings.ToLower(m.input))
		if choice == "y" || choice == "yes" || choice == "" {
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.saved = true
			return m, tea.Quit
		} else if choice == "n" || choice == "no" {
			m.step = stepWelcome
			m.input = ""
			m.discordToken = ""
			m.llmProvider = ""
			m.llmAPIKey = ""
		}
	}

	return m, nil
}

func (m model) envContent() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SQLITE_PATH=%s\n", defaultSQLitePath)
	fmt.Fprintf(&sb, "DISCORD_TOKEN=%s\n", m.discordToken)
	switch m.llmProvider {
	case llm.ProviderAnthropic:
		fmt.Fprintf(&sb, "LLM_PROVIDER=%s\nANTHROPIC_API_KEY=%s\n", m.llmProvider, m.llmAPIKey)
	case llm.ProviderGoogle:
		fmt.Fprintf(&sb, "LLM_PROVIDER=%s\nGOOGLE_API_KEY=%s\n", m.llmProvider, m.llmAPIKey)
	}
	return sb.String()
}

func (m model) writeEnvFile() error {
	return os.WriteFile(m.path, []byte(m.envContent()), 0600)
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("Type to Reveal - Bot Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard will help you configure the Discord bot.\n")
		s.WriteString("You'll need:\n\n")
		s.WriteString("  - A Discord bot token\n")
		s.WriteString("  - Optionally, an LLM API key (Anthropic or Google) for word meanings\n")
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepDiscord:
		s.WriteString(titleStyle.Render("Step 1: Discord Bot Token"))
		s.WriteString("\n\n")
		s.WriteString("To get your Discord bot token:\n\n")
		s.WriteString("  1. Go to " + linkStyle.Render("https://discord.com/developers/applications") + "\n")
		s.WriteString("  2. Create a new application (or select existing)\n")
		s.WriteString("  3. Go to the Bot section\n")
		s.WriteString("  4. Click 'Reset Token' to get your bot token\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your Discord token here:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(maskToken(m.input)))

	case stepLLMProvider:
		s.WriteString(titleStyle.Render("Step 2: Word Meanings (optional)"))
		s.WriteString("\n\n")
		s.WriteString("Words outside the vocabulary can be explained by an LLM.\n\n")
		s.WriteString("  1. Anthropic (Claude)\n")
		s.WriteString("  2. Google (Gemini)\n")
		s.WriteString("  3. Skip\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Enter 1, 2 or 3:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))

	case stepLLMKey:
		s.WriteString(titleStyle.Render("Step 3: LLM API Key"))
		s.WriteString("\n\n")
		if m.llmProvider == llm.ProviderAnthropic {
			s.WriteString("To get your Anthropic API key:\n\n")
			s.WriteString("  1. Go to " + linkStyle.Render("https://console.anthropic.com") + "\n")
			s.WriteString("  2. Sign up or log in\n")
			s.WriteString("  3. Go to API Keys and create a new key\n")
		} else {
			s.WriteString("To get your Google AI API key:\n\n")
			s.WriteString("  1. Go to " + linkStyle.Render("https://aistudio.google.com/apikey") + "\n")
			s.WriteString("  2. Sign in with your Google account\n")
			s.WriteString("  3. Create an API key\n")
		}
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your API key here:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(maskToken(m.input)))

	case stepConfirm:
		provider := m.llmProvider
		if provider == "" {
			provider = "none"
		}
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("Your configuration:\n\n")
		s.WriteString("  Database:     " + successStyle.Render(defaultSQLitePath) + "\n")
		s.WriteString("  Discord:      " + successStyle.Render(maskToken(m.discordToken)) + "\n")
		s.WriteString("  LLM Provider: " + successStyle.Render(provider) + "\n")
		if m.llmAPIKey != "" {
			s.WriteString("  LLM API Key:  " + successStyle.Render(maskToken(m.llmAPIKey)) + "\n")
		}
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))
		s.WriteString("\n")
		s.WriteString("> " + inputStyle.Render(m.input))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	s.WriteString("\n")
	return s.String()
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard and returns true if setup was completed successfully
func Run() (bool, error) {
	p := tea.NewProgram(New())
	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m := finalModel.(model)
	return m.saved, nil
}

// NeedsSetup checks if .env file exists
func NeedsSetup() bool {
	_, err := os.Stat(envPath)
	return os.IsNotExist(err)
}
