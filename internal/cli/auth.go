package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gadeoli/todoapp-mobile/internal/api"
	"github.com/Gadeoli/todoapp-mobile/internal/session"
	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

type credentialFlags struct {
	name            string
	email           string
	password        string
	confirmPassword string
}

func (f *credentialFlags) form() session.Form {
	return session.Form{
		Name:            f.name,
		Email:           f.email,
		Password:        f.password,
		ConfirmPassword: f.confirmPassword,
	}
}

func signinCmd(flags *globalFlags) *cobra.Command {
	creds := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the session",
		Long: `Signs in to the task service. The session is stored locally and used by
every task command until 'tasks signout'.

If --password is omitted it is read from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitForm(cmd, flags, creds, session.SignIn)
		},
	}

	cmd.Flags().StringVar(&creds.email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.password, "password", "", "Account password")

	return cmd
}

func signupCmd(flags *globalFlags) *cobra.Command {
	creds := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Long: `Registers a new account. Sign in afterwards with 'tasks signin'.

If --password is omitted it is read from the first line of stdin and also
used as the confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitForm(cmd, flags, creds, session.SignUp)
		},
	}

	cmd.Flags().StringVar(&creds.name, "name", "", "Display name (at least 3 characters)")
	cmd.Flags().StringVar(&creds.email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.password, "password", "", "Account password (at least 6 characters)")
	cmd.Flags().StringVar(&creds.confirmPassword, "confirm-password", "", "Repeat the password")

	return cmd
}

func submitForm(cmd *cobra.Command, flags *globalFlags, creds *credentialFlags, mode session.Mode) error {
	if creds.password == "" {
		password, err := readLine(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		creds.password = password
		if mode == session.SignUp && creds.confirmPassword == "" {
			creds.confirmPassword = password
		}
	}

	form := creds.form()
	if problems := session.Problems(form, mode); len(problems) > 0 {
		return fmt.Errorf("invalid %s form: %s", mode, strings.Join(problems, "; "))
	}

	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := a.sessions(session.NavigatorFunc(func(s *types.Session, _ api.Auth) {
		fmt.Fprintf(a.out, "Signed in as %s <%s>\n", s.Name, s.Email)
	}))
	ctrl.SetMode(mode)
	ctrl.SetForm(form)

	if _, err := ctrl.Submit(cmd.Context()); err != nil {
		return reported(err)
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func signoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions(nil).SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func whoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			s, _, err := a.restore(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\n", s.Name, s.Email)
			fmt.Fprintf(a.out, "Server: %s\n", a.client.BaseURL())
			return nil
		},
	}
}
