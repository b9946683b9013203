package command

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/complitracker/complitracker-go/internal/core/domain"
	"github.com/complitracker/complitracker-go/internal/core/service"
	"github.com/complitracker/complitracker-go/internal/storage"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx := c.Context

	creds := domain.Credentials{Email: c.String("email"), Password: c.String("password")}
	if err := promptMissing(ctx, rt,
		field{"Email", &creds.Email},
		field{"Password", &creds.Password},
	); err != nil {
		return err
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	s, err := rt.Session(ctx)
	if err != nil {
		return err
	}
	rt.Navigator().Request(domain.RouteLogin)

	ok := spin(rt, "Logging in", func() bool { return s.Login(ctx, creds) })
	if !ok {
		return failed(s, service.MsgLoginFailed)
	}

	user := s.State().User
	if !rt.printsTable(c) {
		return rt.Print(c, user)
	}
	rt.Printf(c, "Logged in as %s <%s>", user.Name, user.Email)
	return nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "End the session and clear the stored token",
		Action: func(c *cli.Context) error {
			rt := runtimeFrom(c)
			s, err := rt.Session(c.Context)
			if err != nil {
				return err
			}
			s.Logout(c.Context)
			rt.Printf(c, "Logged out")
			return nil
		},
	}
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Full name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
			&cli.StringFlag{Name: "confirm-password", Usage: "Password confirmation (prompted when omitted)"},
		},
		Action: register,
	}
}

func register(c *cli.Context) error {
	rt := runtimeFrom(c)
	ctx := c.Context

	req := domain.RegisterRequest{
		Name:            c.String("name"),
		Email:           c.String("email"),
		Password:        c.String("password"),
		ConfirmPassword: c.String("confirm-password"),
	}
	if err := promptMissing(ctx, rt,
		field{"Name", &req.Name},
		field{"Email", &req.Email},
		field{"Password", &req.Password},
		field{"Confirm password", &req.ConfirmPassword},
	); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	s, err := rt.Session(ctx)
	if err != nil {
		return err
	}
	rt.Navigator().Request(domain.RouteRegister)

	if !spin(rt, "Creating account", func() bool { return s.Register(ctx, req) }) {
		return failed(s, service.MsgRegisterFailed)
	}
	msg := rt.Navigator().TakeFlash()
	if msg == "" {
		msg = service.MsgRegistered
	}
	rt.Printf(c, "%s", msg)
	return nil
}

// profile is what whoami shows.
type profile struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Email     string        `json:"email" yaml:"email"`
	Roles     []string      `json:"roles,omitempty" yaml:"roles,omitempty"`
	Origin    string        `json:"origin" yaml:"origin"`
	ExpiresAt time.Time     `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	ExpiresIn time.Duration `json:"-" yaml:"-"`
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged-in user",
		Action: protected(domain.RouteProfile, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
			st := s.State()
			p := profile{
				ID:     st.User.ID,
				Name:   st.User.Name,
				Email:  st.User.Email,
				Roles:  st.User.Roles,
				Origin: storage.NormalizeOrigin(rt.api.BaseURL()),
			}
			if claims, err := service.NewTokenValidator(0).Decode(st.Token); err == nil {
				p.ExpiresAt = claims.ExpiresAt
				p.ExpiresIn = claims.TTL(time.Now()).Round(time.Second)
			}
			return rt.Print(c, p)
		}),
	}
}

// RefreshCommand returns the refresh command.
func RefreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Exchange the refresh token for a new session token",
		Action: protected(domain.RouteProfile, func(c *cli.Context, rt *Runtime, s *service.Controller) error {
			if !spin(rt, "Refreshing session", func() bool { return s.Refresh(c.Context) }) {
				return failed(s, service.MsgRefreshFailed)
			}
			rt.Printf(c, "Session refreshed")
			return nil
		}),
	}
}

// ForgotPasswordCommand returns the forgot-password command.
func ForgotPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "forgot-password",
		Usage: "Request a password reset email",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
		},
		Action: func(c *cli.Context) error {
			rt := runtimeFrom(c)
			ctx := c.Context

			email := c.String("email")
			if err := promptMissing(ctx, rt, field{"Email", &email}); err != nil {
				return err
			}
			if _, err := mail.ParseAddress(email); err != nil {
				return domain.ErrValidation.WithDetails("a valid email address is required")
			}

			s, err := rt.Session(ctx)
			if err != nil {
				return err
			}
			rt.Navigator().Request(domain.RouteForgotPassword)
			if !spin(rt, "Requesting reset", func() bool { return s.RequestPasswordReset(ctx, email) }) {
				return failed(s, service.MsgForgotFailed)
			}
			rt.Printf(c, "If an account exists for %s, a reset link is on its way.", email)
			return nil
		},
	}
}

// ResetPasswordCommand returns the reset-password command.
func ResetPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-password",
		Usage: "Set a new password with the token from the reset email",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "Reset token from the email"},
			&cli.StringFlag{Name: "new-password", Aliases: []string{"p"}, Usage: "New password (prompted when omitted)"},
			&cli.StringFlag{Name: "confirm-password", Usage: "Password confirmation (prompted when omitted)"},
		},
		Action: func(c *cli.Context) error {
			rt := runtimeFrom(c)
			ctx := c.Context

			resetToken := c.String("token")
			password := c.String("new-password")
			confirm := c.String("confirm-password")
			if err := promptMissing(ctx, rt,
				field{"Reset token", &resetToken},
				field{"New password", &password},
				field{"Confirm password", &confirm},
			); err != nil {
				return err
			}
			if err := validateNewPassword(resetToken, password, confirm); err != nil {
				return err
			}

			s, err := rt.Session(ctx)
			if err != nil {
				return err
			}
			rt.Navigator().Request(domain.RouteResetPassword)
			if !spin(rt, "Resetting password", func() bool { return s.ResetPassword(ctx, resetToken, password) }) {
				return failed(s, service.MsgResetFailed)
			}
			rt.Navigator().Request(domain.RouteLogin)
			rt.Printf(c, "Password reset. Log in with your new password.")
			return nil
		},
	}
}

func validateNewPassword(resetToken, password, confirm string) error {
	if resetToken == "" {
		return domain.ErrValidation.WithDetails("reset token is required")
	}
	if len(password) < domain.MinPasswordLength {
		return domain.ErrValidation.WithDetails("password must be at least 8 characters")
	}
	if password != confirm {
		return domain.ErrValidation.WithDetails("passwords do not match")
	}
	return nil
}

// field is a prompt label and the value it fills.
type field struct {
	label string
	value *string
}

// promptMissing asks for every field that is still empty.
func promptMissing(ctx context.Context, rt *Runtime, fields ...field) error {
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		v, err := rt.Prompt(ctx, f.label)
		if err != nil {
			return err
		}
		*f.value = v
	}
	return nil
}

// failed turns the controller's last error into a command error.
func failed(s *service.Controller, fallback string) error {
	if msg := s.LastError(); msg != "" {
		return errors.New(msg)
	}
	return errors.New(fallback)
}
