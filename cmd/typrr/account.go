package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typrr/internal/client"
	"github.com/verte-zerg/typrr/internal/localstate"
	"github.com/verte-zerg/typrr/internal/model"
)

var (
	accountEmail    string
	accountUsername string
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE:  runRegisterCmd,
	}
	cmd.Flags().StringVar(&accountEmail, "email", "", "account email")
	cmd.Flags().StringVar(&accountUsername, "username", "", "public username")
	return cmd
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in so attempts are saved online",
		Args:  cobra.NoArgs,
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&accountEmail, "email", "", "account email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved sign-in",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
}

func runRegisterCmd(cmd *cobra.Command, _ []string) error {
	return authenticate(cmd, func(ctx context.Context, c *client.Client, in *bufio.Reader) (model.Credential, error) {
		email, err := promptValue(cmd.ErrOrStderr(), in, "Email: ", accountEmail)
		if err != nil {
			return model.Credential{}, err
		}
		username, err := promptValue(cmd.ErrOrStderr(), in, "Username: ", accountUsername)
		if err != nil {
			return model.Credential{}, err
		}
		password, err := promptPassword(cmd.ErrOrStderr(), in)
		if err != nil {
			return model.Credential{}, err
		}
		return c.Register(ctx, email, username, password)
	})
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	return authenticate(cmd, func(ctx context.Context, c *client.Client, in *bufio.Reader) (model.Credential, error) {
		email, err := promptValue(cmd.ErrOrStderr(), in, "Email: ", accountEmail)
		if err != nil {
			return model.Credential{}, err
		}
		password, err := promptPassword(cmd.ErrOrStderr(), in)
		if err != nil {
			return model.Credential{}, err
		}
		return c.Login(ctx, email, password)
	})
}

type signInFunc func(ctx context.Context, c *client.Client, in *bufio.Reader) (model.Credential, error)

func authenticate(cmd *cobra.Command, signIn signInFunc) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	c, err := requireClient(fileCfg)
	if err != nil {
		return err
	}
	st, err := openState()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, cancel := timeoutContext()
	defer cancel()
	cred, err := signIn(ctx, c, bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return describeAPIError(err)
	}
	credStore := localstate.NewJSON[model.Credential](st, localstate.KeyCredential, nil)
	if err := credStore.Save(context.Background(), cred); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", cred.Username)
	return err
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	st, err := openState()
	if err != nil {
		return err
	}
	defer closeStore(st)
	credStore := localstate.NewJSON[model.Credential](st, localstate.KeyCredential, nil)
	if err := credStore.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return err
}

func promptValue(w io.Writer, in *bufio.Reader, label, preset string) (string, error) {
	if preset = strings.TrimSpace(preset); preset != "" {
		return preset, nil
	}
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("%s must not be empty", strings.ToLower(strings.TrimSuffix(label, ": ")))
	}
	return value, nil
}

// promptPassword reads without echo when stdin is a terminal.
func promptPassword(w io.Writer, in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptValue(w, in, "Password: ", "")
	}
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	raw, err := term.ReadPassword(fd)
	if _, perr := fmt.Fprintln(w); perr != nil {
		// Best-effort newline after the hidden input.
		_ = perr
	}
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := string(raw)
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

// describeAPIError adds validation details to the server's message.
func describeAPIError(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		return err
	}
	return fmt.Errorf("%s:\n  %s", apiErr.Message, strings.Join(apiErr.Details, "\n  "))
}
