package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	securelogin "github.com/gourab-0/secure-login-system"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			pw, err := readPassword("Enter password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if pw != confirm {
				return errors.New("passwords do not match")
			}

			record, err := a.engine.Register(cmd.Context(), username, pw)
			if err != nil {
				if errors.Is(err, securelogin.ErrAccountExists) {
					return fmt.Errorf("username %q is already taken", username)
				}
				return err
			}

			a.log.Info().Str("username", record.Username).Msg("account created")
			fmt.Printf("User %s registered successfully.\n", record.Username)
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate with password and, if enrolled, a one-time code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if err := authenticateInteractive(cmd.Context(), a, username); err != nil {
				return err
			}
			fmt.Printf("Login successful. Welcome, %s!\n", username)
			return nil
		},
	}
}

func newEnable2FACmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enable-2fa <username>",
		Short: "Enroll a TOTP second factor (requires a successful login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if err := authenticateInteractive(cmd.Context(), a, username); err != nil {
				return err
			}

			setup, err := a.engine.EnableTwoFactor(cmd.Context(), username)
			if err != nil {
				return err
			}

			if qr, err := qrcode.New(setup.URI, qrcode.Medium); err == nil {
				fmt.Fprintln(os.Stderr)
				fmt.Fprintln(os.Stderr, "  Scan this QR code with your authenticator app:")
				fmt.Fprintln(os.Stderr)
				fmt.Fprint(os.Stderr, qr.ToSmallString(false))
			}

			fmt.Println("Two-factor authentication enabled.")
			fmt.Printf("Secret key (store it securely): %s\n", setup.SecretBase32)

			if code, err := a.engine.TwoFactorCode(cmd.Context(), username); err == nil {
				fmt.Printf("Current code: %s (changes every 30 seconds)\n", code)
			}
			return nil
		},
	}
}

func newDisable2FACmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disable-2fa <username>",
		Short: "Remove the TOTP second factor (requires a successful login)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]
			if err := authenticateInteractive(cmd.Context(), a, username); err != nil {
				return err
			}
			if err := a.engine.DisableTwoFactor(cmd.Context(), username); err != nil {
				return err
			}
			fmt.Println("Two-factor authentication disabled.")
			return nil
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.engine.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("No users registered.")
				return nil
			}

			fmt.Printf("%-38s%-22s%s\n", "ID", "Username", "2FA")
			for _, u := range users {
				enabled := "no"
				if u.TwoFactorEnabled {
					enabled = "yes"
				}
				fmt.Printf("%-38s%-22s%s\n", u.UserID, u.Username, enabled)
			}
			return nil
		},
	}
}

// authenticateInteractive runs the full login conversation: password
// prompt, then a one-time code prompt if the account requires one. Each
// engine call is a fresh stateless evaluation of the whole attempt.
func authenticateInteractive(ctx context.Context, a *app, username string) error {
	pw, err := readPassword("Enter password: ")
	if err != nil {
		return err
	}

	outcome, err := a.engine.Authenticate(ctx, securelogin.LoginAttempt{
		Username: username,
		Password: pw,
	})
	if err != nil {
		return err
	}

	if outcome == securelogin.OutcomeTwoFactorRequired {
		code, err := readCode("Enter your two-factor code: ")
		if err != nil {
			return err
		}
		outcome, err = a.engine.Authenticate(ctx, securelogin.LoginAttempt{
			Username: username,
			Password: pw,
			TOTPCode: code,
		})
		if err != nil {
			return err
		}
	}

	switch outcome {
	case securelogin.OutcomeSuccess:
		return nil
	case securelogin.OutcomeInvalidTwoFactorCode:
		return errors.New("invalid two-factor code")
	default:
		return errors.New("invalid username or password")
	}
}
