package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/GopiRanganathan/todo/internal/page"
	"github.com/GopiRanganathan/todo/internal/routes"
	"github.com/GopiRanganathan/todo/internal/worker"
	"github.com/GopiRanganathan/todo/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "todoctl",
		Usage: "drive the todo page and service-worker glue from a terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "backend base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"TODO_URL"},
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "user id sent in the " + routes.UserHeader + " header",
				EnvVars: []string{"TODO_USER_ID"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "token",
				Usage:     "register a push token with the backend",
				ArgsUsage: "<token>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one token", 2)
					}
					return newClient(c, out).SendToken(c.Context, c.Args().First())
				},
			},
			{
				Name:      "todo",
				Usage:     "set a todo's completion state",
				ArgsUsage: "<todo-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "completed", Usage: "mark the todo as done"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one todo id", 2)
					}
					box := page.NewCheckbox("todo-"+c.Args().First(), c.Args().First())
					box.SetChecked(c.Bool("completed"))
					return newClient(c, out).UpdateTodoStatus(c.Context, box)
				},
			},
			{
				Name:      "push",
				Usage:     "deliver a push payload to the service worker",
				ArgsUsage: "<text>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "click", Usage: "click the notification once shown"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected exactly one payload", 2)
					}
					return runPush(c, out, c.Args().First(), c.Bool("click"))
				},
			},
		},
	}
}

func newLogger(c *cli.Context, out io.Writer) *slog.Logger {
	return logger.NewWithWriter(out, c.String("log-level"))
}

func newClient(c *cli.Context, out io.Writer) *page.Client {
	var opts []page.Option
	if user := c.String("user"); user != "" {
		opts = append(opts, page.WithHeader(routes.UserHeader, user))
	}
	return page.NewClient(c.String("url"), newLogger(c, out), opts...)
}

func runPush(c *cli.Context, out io.Writer, text string, click bool) error {
	logr := newLogger(c, out)
	reg := worker.NewConsoleRegistration(logr)
	loop := worker.NewLoop(worker.New(reg, worker.NewConsoleClients(logr)), logr, 1)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	if err := dispatch(ctx, loop, worker.PushEvent{Data: worker.PushData(text)}); err != nil {
		return err
	}
	if !click {
		return nil
	}
	for _, n := range reg.Shown() {
		if err := dispatch(ctx, loop, worker.NotificationClickEvent{Notification: n}); err != nil {
			return err
		}
	}
	return nil
}

func dispatch(ctx context.Context, loop *worker.Loop, ev worker.Event) error {
	res, err := loop.Dispatch(ctx, ev)
	if err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
