package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/relaybot/pkg/app"
)

// program adapts app.Run to the service manager's Start/Stop callbacks.
type program struct {
	params app.RunParams
	run    func(context.Context, app.RunParams) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
}

func newProgram(params app.RunParams) *program {
	return &program{params: params, run: app.Run}
}

// Start must not block.
func (p *program) Start(service.Service) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return fmt.Errorf("service already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() {
		p.done <- p.run(ctx, p.params)
	}()
	return nil
}

// Stop cancels the bot and waits for its shutdown to finish.
func (p *program) Stop(service.Service) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	return <-done
}

func serviceConfig(flags *globalFlags) (*service.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	args := []string{"service", "run"}
	if flags.configPath != "" {
		abs, err := filepath.Abs(flags.configPath)
		if err != nil {
			return nil, err
		}
		args = append(args, "--config", abs)
	}
	for _, f := range flags.envFiles {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, "--env-file", abs)
	}
	return &service.Config{
		Name:             "relaybot",
		DisplayName:      "relaybot",
		Description:      "Telegram chat companion backed by Gemini",
		Arguments:        args,
		WorkingDirectory: wd,
	}, nil
}

func serviceCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage relaybot as a system service",
	}

	for _, action := range []string{"install", "uninstall", "start", "stop", "restart"} {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", action),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(flags)
				if err != nil {
					return err
				}
				if err := service.Control(svc, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := newService(flags)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the system service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(flags)
			if err != nil {
				return err
			}
			status, err := svc.Status()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusString(status))
			return nil
		},
	})
	return cmd
}

func newService(flags *globalFlags) (service.Service, error) {
	cfg, err := serviceConfig(flags)
	if err != nil {
		return nil, err
	}
	return service.New(newProgram(flags.runParams()), cfg)
}

func statusString(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
