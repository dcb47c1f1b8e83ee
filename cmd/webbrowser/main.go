package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"webbrowser/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{Ctx: ctx}

	cli := &CLI{}
	kctx, err := parse(cli, args, stdout, stderr, deps)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.EnvFile)
	if err != nil {
		return err
	}
	deps.Config = cfg

	return kctx.Run()
}

func parse(cli *CLI, args []string, stdout, stderr io.Writer, deps *Dependencies, opts ...kong.Option) (*kong.Context, error) {
	opts = append([]kong.Option{
		kong.Name("webbrowser"),
		kong.Description("Fetch web pages and extract title, text, links and CSS-selected content."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.Bind(deps),
	}, opts...)

	parser, err := kong.New(cli, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	return parser.Parse(args)
}
