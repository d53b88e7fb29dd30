package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"firstdraft-cli/internal/app"
	"firstdraft-cli/internal/tui"

	"github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	repoURL = "https://github.com/jaivial/firstdraft-cli"
)

func getBinaryPath() string {
	exe, _ := os.Executable()
	return exe
}

func generateCompletion(shell string) error {
	switch shell {
	case "bash":
		fmt.Println("# bash completion for firstdraft")
		fmt.Println("_firstdraft_completions() {")
		fmt.Println("    local cur prev opts")
		fmt.Println("    COMPREPLY=()")
		fmt.Println("    cur=\"${COMP_WORDS[COMP_CWORD]}\"")
		fmt.Println("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"")
		fmt.Println("    opts=\"login signup logout sessions completion help version --help\"")
		fmt.Println("    if [[ $COMP_CWORD -eq 1 ]]; then")
		fmt.Println("        COMPREPLY=( $(compgen -W \"${opts}\" -- \"${cur}\" )")
		fmt.Println("    fi")
		fmt.Println("    return 0")
		fmt.Println("}")
		fmt.Println("complete -F _firstdraft_completions firstdraft")
	case "zsh":
		fmt.Println("# zsh completion for firstdraft")
		fmt.Println("compdef _firstdraft firstdraft")
		fmt.Println("_firstdraft() {")
		fmt.Println("    _arguments -C \\")
		fmt.Println("        '(-h --help)'{-h,--help}'[show help]' \\")
		fmt.Println("        '(-v --version)'{-v,--version}'[print version]' \\")
		fmt.Println("        '*::command:->command'")
		fmt.Println("    case $state in")
		fmt.Println("        command)")
		fmt.Println("            if (( CURRENT == 1 )); then")
		fmt.Println("                _describe -t commands 'firstdraft commands' commands")
		fmt.Println("            fi")
		fmt.Println("            ;;")
		fmt.Println("    esac")
		fmt.Println("}")
	case "fish":
		fmt.Println("# fish completion for firstdraft")
		fmt.Println("complete -c firstdraft -f -a '(login signup logout sessions completion help version)'")
		fmt.Println("complete -c firstdraft -s h -l help -d 'Show help'")
		fmt.Println("complete -c firstdraft -s v -l version -d 'Print version'")
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
	return nil
}

func loadApplication() (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	return app.NewApplication(cfg, ""), nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runTUI(application *app.Application) error {
	for {
		if !application.Credentials().SignedIn() {
			auth := tui.NewAuthModel(application)
			if _, err := tea.NewProgram(auth, tea.WithAltScreen()).Run(); err != nil {
				return err
			}
			if !auth.Authenticated() {
				return nil
			}
		}

		chat := tui.NewChatModel(application)
		if _, err := tea.NewProgram(chat, tea.WithAltScreen()).Run(); err != nil {
			return err
		}
		if !chat.LoggedOut() {
			return nil
		}
		// Logged out from inside the chat screen: back to sign-in.
	}
}

func main() {
	root := &cobra.Command{
		Use:     "firstdraft",
		Short:   "FirstDraft - AI scriptwriting in your terminal",
		Long:    "FirstDraft is a terminal client for the FirstDraft scriptwriting service.\n\nUse without arguments for the interactive TUI, or with subcommands for one-shot account and session operations.\n\nFor more information, visit: " + repoURL,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Printf("FirstDraft CLI v%s\n", version)
				fmt.Printf("Repository: %s\n", repoURL)
				fmt.Printf("Installed at: %s\n", getBinaryPath())
				return nil
			}

			if comp, _ := cmd.Flags().GetString("completion"); comp != "" {
				return generateCompletion(comp)
			}

			application, err := loadApplication()
			if err != nil {
				return err
			}
			return runTUI(application)
		},
	}

	root.Flags().BoolP("version", "v", false, "Print version information")
	root.Flags().String("completion", "", "Generate shell completion (bash|zsh|fish)")

	loginCmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and store the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}

			email := ""
			if len(args) > 0 {
				email = args[0]
			} else if email, err = promptLine("Email: "); err != nil {
				return err
			}
			password, err := promptLine("Password: ")
			if err != nil {
				return err
			}

			if err := application.Login(context.Background(), email, password); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s\n", application.Credentials().User.Email)
			return nil
		},
	}
	root.AddCommand(loginCmd)

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}

			name, err := promptLine("Name: ")
			if err != nil {
				return err
			}
			email, err := promptLine("Email: ")
			if err != nil {
				return err
			}
			password, err := promptLine("Password: ")
			if err != nil {
				return err
			}

			if err := application.Signup(context.Background(), name, email, password); err != nil {
				return err
			}
			fmt.Printf("Welcome, %s\n", application.Credentials().User.Name)
			return nil
		},
	}
	root.AddCommand(signupCmd)

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			application.Logout()
			fmt.Println("Signed out.")
			return nil
		},
	}
	root.AddCommand(logoutCmd)

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List your chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApplication()
			if err != nil {
				return err
			}
			email := application.Credentials().User.Email
			if email == "" {
				return fmt.Errorf("not signed in. Run 'firstdraft login' first")
			}

			var sessions []app.ChatSession
			if sessionsCached {
				sessions = application.Local.LoadSessionSnapshot(email)
			} else {
				application.SyncSessions(context.Background())
				sessions = application.Pipeline.Sessions.List()
			}

			if len(sessions) == 0 {
				fmt.Println("No chats yet.")
				return nil
			}
			for i, sess := range sessions {
				fmt.Printf("%2d. %s  (%s)\n", i+1, sess.DisplayTitle(), sess.SessionID)
			}
			return nil
		},
	}
	sessionsCmd.Flags().BoolVar(&sessionsCached, "cached", false, "Use the last saved session listing instead of the network")
	root.AddCommand(sessionsCmd)

	completionCmd := &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion",
		Long:  "Generate shell completion script for firstdraft.\n\nExamples:\n  - firstdraft completion bash >> ~/.bashrc\n  - firstdraft completion zsh > ~/.zsh/completion/_firstdraft\n  - firstdraft completion fish > ~/.config/fish/completions/firstdraft.fish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateCompletion(args[0])
		},
	}
	root.AddCommand(completionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var sessionsCached bool
