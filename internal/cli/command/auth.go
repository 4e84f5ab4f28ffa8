package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/cricket-go/internal/cli/input"
	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/core/service"
	"github.com/yndnr/cricket-go/pkg/token"
)

// AuthCommand returns the auth subcommand group.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Register, sign in and sign out",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Display name",
					},
					emailFlag(),
					passwordFlag(),
				},
				Action: authRegister,
			},
			{
				Name:   "login",
				Usage:  "Sign in with email and password",
				Flags:  []cli.Flag{emailFlag(), passwordFlag()},
				Action: authLogin,
			},
			{
				Name:  "otp",
				Usage: "Sign in with a code texted to your phone",
				Subcommands: []*cli.Command{
					{
						Name:   "request",
						Usage:  "Send a code to a phone number",
						Flags:  []cli.Flag{phoneFlag()},
						Action: authOTPRequest,
					},
					{
						Name:  "verify",
						Usage: "Sign in with the code you received",
						Flags: []cli.Flag{
							phoneFlag(),
							&cli.StringFlag{
								Name:  "otp",
								Usage: "Code received by text message",
							},
						},
						Action: authOTPVerify,
					},
				},
			},
			{
				Name:  "token-login",
				Usage: "Sign in with an identity provider ID token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id-token",
						Usage: "ID token issued by the identity provider",
					},
				},
				Action: authTokenLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the saved session",
				Action: authLogout,
			},
			{
				Name:    "status",
				Aliases: []string{"whoami"},
				Usage:   "Show the current session",
				Action:  authStatus,
			},
		},
	}
}

func emailFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "email",
		Aliases: []string{"e"},
		Usage:   "Email address",
	}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   "Password",
	}
}

func phoneFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "phone",
		Usage: "Phone number, e.g. +15551234567",
	}
}

func authRegister(c *cli.Context) error {
	const fallback = "Registration failed"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	req := service.RegisterRequest{
		DisplayName: c.String("name"),
		Email:       c.String("email"),
		Password:    c.String("password"),
	}
	if err := env.fill(
		promptField{&req.DisplayName, "Full name", ""},
		promptField{&req.Email, "Email", ""},
		promptField{&req.Password, "Password", ""},
	); err != nil {
		return err
	}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	var ack domain.Ack
	err = env.spin("Creating account", func() error {
		ack, err = env.auth.Register(ctx, req)
		return err
	})
	if err != nil {
		return fail(err, fallback)
	}
	return env.Done("Registration successful. You can now log in.", ackData(ack))
}

func authLogin(c *cli.Context) error {
	const fallback = "Login failed"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	req := service.EmailLoginRequest{
		Email:    c.String("email"),
		Password: c.String("password"),
	}
	if err := env.fill(
		promptField{&req.Email, "Email", ""},
		promptField{&req.Password, "Password", ""},
	); err != nil {
		return err
	}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	var res *domain.AuthResult
	err = env.spin("Signing in", func() error {
		res, err = env.auth.EmailLogin(ctx, req)
		return err
	})
	if err != nil {
		return fail(err, fallback)
	}
	return signIn(c, env, res, fallback)
}

func authOTPRequest(c *cli.Context) error {
	const fallback = "Could not send code"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	req := service.RequestOTPRequest{PhoneNumber: c.String("phone")}
	if err := env.fill(promptField{&req.PhoneNumber, "Phone number", ""}); err != nil {
		return err
	}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	challenge, err := env.auth.RequestOTP(ctx, req.PhoneNumber)
	if err != nil {
		return fail(err, fallback)
	}

	msg := fmt.Sprintf("A code was sent to %s.", req.PhoneNumber)
	if challenge.Code != "" {
		msg += fmt.Sprintf(" Development code: %s", challenge.Code)
	}
	return env.Done(msg, challenge)
}

func authOTPVerify(c *cli.Context) error {
	const fallback = "Verification failed"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	req := service.VerifyOTPRequest{
		PhoneNumber: c.String("phone"),
		OTP:         c.String("otp"),
	}
	if err := env.fill(
		promptField{&req.PhoneNumber, "Phone number", ""},
		promptField{&req.OTP, "Code", ""},
	); err != nil {
		return err
	}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	res, err := env.auth.VerifyOTP(ctx, req)
	if err != nil {
		return fail(err, fallback)
	}
	return signIn(c, env, res, fallback)
}

func authTokenLogin(c *cli.Context) error {
	const fallback = "Login failed"
	env, err := envFrom(c)
	if err != nil {
		return err
	}

	req := service.IDTokenLoginRequest{IDToken: c.String("id-token")}
	if err := env.fill(promptField{&req.IDToken, "ID token", ""}); err != nil {
		return err
	}
	if err := input.Validate(req); err != nil {
		return fail(err, fallback)
	}

	ctx, cancel := env.Context(c)
	defer cancel()
	if err := env.open(ctx); err != nil {
		return fail(err, fallback)
	}

	res, err := env.auth.LoginWithIDToken(ctx, req.IDToken)
	if err != nil {
		return fail(err, fallback)
	}
	return signIn(c, env, res, fallback)
}

// signIn hands a login result to the session manager and greets the user.
func signIn(c *cli.Context, env *Env, res *domain.AuthResult, fallback string) error {
	ctx, cancel := env.Context(c)
	defer cancel()

	if err := env.session.SignIn(ctx, *res); err != nil {
		return fail(err, fallback)
	}
	s := env.session.Session()
	return env.Done(fmt.Sprintf("Welcome, %s!", s.Name()), s)
}

func authLogout(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := env.Context(c)
	defer cancel()

	mgr, err := env.Session(ctx)
	if err != nil {
		return fail(err, "Could not sign out")
	}
	if err := mgr.SignOut(ctx); err != nil {
		return fail(err, "Could not sign out")
	}
	return env.Done("Signed out.", mgr.Session())
}

// sessionStatus is the profile view of the current session.
type sessionStatus struct {
	Name      string `json:"displayName"`
	State     string `json:"state"`
	Server    string `json:"server"`
	Token     string `json:"token,omitempty"`
	Subject   string `json:"subject,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Expired   bool   `json:"expired"`
}

func authStatus(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	ctx, cancel := env.Context(c)
	defer cancel()

	view, err := env.View(ctx)
	if err != nil {
		return fail(err, "Could not read session")
	}

	s := view.Session()
	status := sessionStatus{
		Name:   s.Name(),
		State:  s.State().String(),
		Server: env.client.BaseURL(),
		Token:  token.Fingerprint(s.Token),
	}
	if info, err := view.TokenInfo(); err == nil {
		status.Subject = info.Subject
		if !info.ExpiresAt.IsZero() {
			status.ExpiresAt = info.ExpiresAt.Local().Format(time.RFC1123)
			status.Expired = info.Expired(env.now())
		}
	} else if s.Authenticated() {
		env.Logger.Debug("session token is not inspectable", "error", err)
	}
	return env.Render(status)
}
