package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/client/client"
	"github.com/dmitrijs2005/messagely/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register asks for the profile fields and creates the account. The new
// user is logged in right away.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Enter username", &req.Username},
		{"Enter first name", &req.FirstName},
		{"Enter last name", &req.LastName},
		{"Enter phone", &req.Phone},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	req.Password = string(password)

	u, err := a.client.Register(ctx, req)
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	a.userName = u.Username
	fmt.Fprintf(a.out, "Welcome, %s!\n", u.FullName())
	return nil
}

// Login asks for credentials and keeps the token for the session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.client.Login(ctx, userName, string(password)); err != nil {
		fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Logged in!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please register or login first")
		return client.ErrNotLoggedIn
	}
	return nil
}
