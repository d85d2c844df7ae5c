package users

import (
	"errors"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlog/internal/auth"
	"github.com/julianstephens/habitlog/internal/cli"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/validation"
)

type UserCmd struct {
	Add UserAddCmd `cmd:"" help:"Register a new user."`
}

type UserAddCmd struct {
	Username string `arg:"" help:"Login name."`
	Email    string `help:"Email address." required:""`
	Password string `help:"Password. Prompted for when omitted."`
}

func (c *UserAddCmd) Run(ctx *cli.Context) error {
	password := c.Password
	if password == "" {
		var err error
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	svc := auth.NewService(ctx.Store, session.NewSQLStore(ctx.Store))
	user, err := svc.Register(ctx, c.Username, c.Email, password)
	if err != nil {
		return err
	}

	ctx.Printf("Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func promptPassword() (string, error) {
	var password, confirm string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validation.Password).
				Value(&password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s != password {
						return errors.New("passwords do not match")
					}
					return nil
				}).
				Value(&confirm),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return "", err
	}
	return password, nil
}
