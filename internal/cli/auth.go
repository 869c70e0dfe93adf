package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

func newRegisterCommand(app *App) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := app.readPassword("Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			req := domain.RegisterRequest{Email: strings.TrimSpace(email), Password: password, Name: strings.TrimSpace(name)}
			if !app.Auth.Register(cmd.Context(), req) {
				return errors.New(app.Auth.State().Error)
			}

			printUser(cmd, app.Auth.State().User)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newLoginCommand(app *App) *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long: `Sign in to the backend.

With --remember the email is stored locally and used as the default
for the next login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = app.rememberedEmail()
			}
			if email == "" {
				return errors.New("email is required")
			}
			if password == "" {
				p, err := app.readPassword("Password for " + email + ": ")
				if err != nil {
					return err
				}
				password = p
			}

			req := domain.LoginRequest{Email: strings.TrimSpace(email), Password: password}
			if !app.Auth.Login(cmd.Context(), req) {
				return errors.New(app.Auth.State().Error)
			}

			if remember {
				app.Store.Set(storage.KeyRememberedEmail, req.Email)
				app.Store.Set(storage.KeyRememberMe, "true")
			} else if cmd.Flags().Changed("remember") {
				app.Store.Remove(storage.KeyRememberedEmail, storage.KeyRememberMe)
			}

			printUser(cmd, app.Auth.State().User)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (defaults to the remembered one)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember the email for the next login")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Client.Logout(cmd.Context())
			app.Auth.Logout()
			return nil
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Auth.CheckAuth(cmd.Context())

			state := app.Auth.State()
			if !state.IsAuthenticated || state.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), labelStyle.Render("Not logged in"))
				return nil
			}
			printUser(cmd, state.User)
			return nil
		},
	}
}

func printUser(cmd *cobra.Command, user *domain.AuthUser) {
	if user == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, field("Name", user.Name))
	fmt.Fprintln(out, field("Email", user.Email))
	fmt.Fprintln(out, labelStyle.Render("ID:")+" "+idStyle.Render(fmt.Sprintf("%d", user.ID)))
}

func (app *App) rememberedEmail() string {
	if flag, ok := app.Store.Get(storage.KeyRememberMe); !ok || flag != "true" {
		return ""
	}
	email, _ := app.Store.Get(storage.KeyRememberedEmail)
	return email
}

func (app *App) readPassword(prompt string) (string, error) {
	if app.PasswordPrompt != nil {
		return app.PasswordPrompt(prompt)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	password, err := line.PasswordPrompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errors.New("aborted")
	}
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}
