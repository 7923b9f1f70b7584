// Command k8sagent answers Kubernetes operations questions with a generate/evaluate loop and
// returns styled HTML.
//
//	k8sagent serve --config k8sagent.yaml
//	k8sagent ask "why is my pod pending?"
//	k8sagent chat
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xj90713/k8sagent/config"
	"github.com/xj90713/k8sagent/observability"
	"github.com/xj90713/k8sagent/server"
)

const closeTimeout = 10 * time.Second

var (
	configPath string
	logLevel   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "k8sagent",
		Short:         "Kubernetes operations assistant with iterative answer refinement",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newServeCmd(), newAskCmd(), newChatCmd())
	return root
}

// setup loads the configuration and builds the logger and pipeline.
func setup(ctx context.Context, quiet bool) (config.Config, *app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	} else if quiet && cfg.Logging.Level == "info" {
		// Interactive commands print answers on stdout; keep routine logs out of the way.
		cfg.Logging.Level = "warn"
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, err
	}

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return config.Config{}, nil, err
	}
	return cfg, a, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, a, err := setup(ctx, false)
			if err != nil {
				return err
			}
			defer func() { _ = closeApp(a, closeTimeout) }()

			undo, err := maxprocs.Set(maxprocs.Logger(a.logger.Sugar().Infof))
			if err != nil {
				a.logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
			}
			defer undo()

			return runServers(ctx, cfg.Server, a)
		},
	}
}

// runServers serves the chat API and, when configured, the admin listener. A failure of
// either listener stops both.
func runServers(ctx context.Context, cfg config.ServerConfig, a *app) error {
	separateAdmin := cfg.AdminAddr != ""
	srv := server.New(a.executor).
		WithAddr(cfg.Addr).
		WithMaxBodyBytes(cfg.MaxBodyBytes).
		WithRateLimit(cfg.RateLimit, cfg.RateBurst).
		WithGatherer(a.metrics).
		WithAdminRoutes(!separateAdmin).
		WithLogger(a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.ShutdownTimeout)
	})
	if separateAdmin {
		admin := server.NewAdmin(a.metrics).
			WithAddr(cfg.AdminAddr).
			WithLogger(a.logger)
		g.Go(func() error {
			return admin.ListenAndServe(gctx, cfg.ShutdownTimeout)
		})
	}
	return g.Wait()
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question and print the HTML",
		Long:  "Answers one question. With no arguments the question is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if question == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read question: %w", err)
				}
				question = string(data)
			}
			question = strings.TrimSpace(question)
			if question == "" {
				return errors.New("question is empty")
			}

			_, a, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = closeApp(a, closeTimeout) }()

			fmt.Fprintln(cmd.OutOrStdout(), a.executor.Invoke(cmd.Context(), question))
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, a, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer func() { _ = closeApp(a, closeTimeout) }()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "k8sagent> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			return chatLoop(cmd.Context(), rl, a, cmd.OutOrStdout())
		},
	}
}

// lineReader is the part of readline.Instance the chat loop needs.
type lineReader interface {
	Readline() (string, error)
}

func chatLoop(ctx context.Context, rl lineReader, a *app, out io.Writer) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		}

		fmt.Fprintln(out, a.executor.Invoke(ctx, line))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
