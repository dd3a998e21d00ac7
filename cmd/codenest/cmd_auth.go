package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"codenest/internal/api"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	authEmail    string
	authPassword string
	authName     string
	authRemember bool
)

// loginCmd signs in and stores the session cookie server-side. The
// interactive UI picks the session up on its next start via the who-am-I
// endpoint.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to CodeNest",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of CodeNest",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a CodeNest account",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "Account password (prompted if omitted)")
	loginCmd.Flags().BoolVar(&authRemember, "remember", false, "Ask the server for a long-lived session")

	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "Account password (prompted if omitted)")
}

// prompt reads one line from stdin with a label.
func prompt(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func requireValue(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return prompt(label)
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, err := newClient(loadConfig())
	if err != nil {
		return err
	}

	email, err := requireValue(authEmail, "Email")
	if err != nil {
		return err
	}
	password, err := requireValue(authPassword, "Password")
	if err != nil {
		return err
	}

	user, err := client.Login(cmd.Context(), api.Credentials{
		Email:    email,
		Password: password,
		Remember: authRemember,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	logger.Info("Logged in", zap.String("user", user.Name))
	fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := newClient(loadConfig())
	if err != nil {
		return err
	}
	if err := client.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Println("Signed out")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, err := newClient(loadConfig())
	if err != nil {
		return err
	}

	name, err := requireValue(authName, "Name")
	if err != nil {
		return err
	}
	email, err := requireValue(authEmail, "Email")
	if err != nil {
		return err
	}
	password, err := requireValue(authPassword, "Password")
	if err != nil {
		return err
	}

	if err := client.Register(cmd.Context(), api.Registration{
		Name:     name,
		Email:    email,
		Password: password,
	}); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Println("Account created. Run 'codenest login' to sign in.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, err := newClient(loadConfig())
	if err != nil {
		return err
	}

	user, err := client.Me(context.Background())
	if err != nil {
		if api.IsTransport(err) {
			return fmt.Errorf("server unreachable: %w", err)
		}
		fmt.Println("Not signed in")
		return nil
	}

	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}
