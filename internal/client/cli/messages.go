package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/messagely/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

// Users prints everyone's public profile.
func (a *App) Users(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	users, err := a.client.Users(ctx)
	if err != nil {
		return a.fail(err)
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%-16s %-30s %s\n", u.Username, u.FullName(), u.Phone)
	}
	return nil
}

// Me prints the logged-in user's own record.
func (a *App) Me(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	u, err := a.client.User(ctx, a.userName)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Username:   %s\nName:       %s\nPhone:      %s\nJoined:     %s\nLast login: %s\n",
		u.Username, u.FullName(), u.Phone,
		u.JoinAt.Local().Format(timeLayout), u.LastLoginAt.Local().Format(timeLayout))
	return nil
}

func (a *App) Inbox(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	msgs, err := a.client.Inbox(ctx, a.userName)
	if err != nil {
		return a.fail(err)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "Inbox is empty")
	}
	for _, m := range msgs {
		fmt.Fprintf(a.out, "#%d from %s [%s]: %s\n", m.ID, m.FromUser.Username, models.ReadStatus(m.ReadAt), m.Body)
	}
	return nil
}

func (a *App) Outbox(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	msgs, err := a.client.Outbox(ctx, a.userName)
	if err != nil {
		return a.fail(err)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "Outbox is empty")
	}
	for _, m := range msgs {
		fmt.Fprintf(a.out, "#%d to %s [%s]: %s\n", m.ID, m.ToUser.Username, models.ReadStatus(m.ReadAt), m.Body)
	}
	return nil
}

// Show prints a single message. The id comes from args or a prompt.
func (a *App) Show(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.messageID(args)
	if err != nil {
		return err
	}
	m, err := a.client.Message(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Message #%d\nFrom: %s (%s)\nTo:   %s (%s)\nSent: %s\nStatus: %s\n\n%s\n",
		m.ID, m.FromUser.Username, m.FromUser.FullName(), m.ToUser.Username, m.ToUser.FullName(),
		m.SentAt.Local().Format(timeLayout), models.ReadStatus(m.ReadAt), m.Body)
	return nil
}

// Send asks for a recipient and a multi-line body.
func (a *App) Send(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	to := ""
	if len(args) > 0 {
		to = args[0]
	} else {
		v, err := getSimpleText(a.reader, "Enter recipient username", a.out)
		if err != nil {
			return err
		}
		to = v
	}

	body, err := getMultiline(a.reader, "Enter message", a.out)
	if err != nil {
		return err
	}

	m, err := a.client.Send(ctx, to, body)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Message #%d sent to %s\n", m.ID, m.ToUsername)
	return nil
}

// Read marks a received message read.
func (a *App) Read(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := a.messageID(args)
	if err != nil {
		return err
	}
	m, err := a.client.MarkRead(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "Message #%d marked %s\n", m.ID, models.ReadStatus(m.ReadAt))
	return nil
}

func (a *App) messageID(args []string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		v, err := getSimpleText(a.reader, "Enter message id", a.out)
		if err != nil {
			return 0, err
		}
		raw = v
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid message id: %q\n", raw)
		return 0, err
	}
	return id, nil
}

func (a *App) fail(err error) error {
	fmt.Fprintf(a.out, "Error: %v\n", err)
	return err
}
