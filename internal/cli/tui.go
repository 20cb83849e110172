package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/openai-cost-tui/internal/app"
	"github.com/j-veylop/openai-cost-tui/internal/logger"
	"github.com/j-veylop/openai-cost-tui/internal/services"
	"github.com/j-veylop/openai-cost-tui/internal/ui/tabs/credential"
	"github.com/j-veylop/openai-cost-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/openai-cost-tui/internal/ui/tabs/info"
	"github.com/j-veylop/openai-cost-tui/internal/ui/tabs/stats"
	"github.com/j-veylop/openai-cost-tui/internal/version"
)

// runTUI starts the services and runs the Bubble Tea program until the user
// quits.
func runTUI(opts *options) error {
	cfg, closer, err := setup(opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting", "version", version.GetVersion(), "config", cfg.File)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	// Tab order must match app.TabID.
	state := model.GetState()
	cmds := model.GetCommands()
	model.SetTabs([]app.Tab{
		dashboard.New(state, cmds),
		stats.New(state, cmds),
		credential.New(state, cmds),
		info.New(state),
	})

	svcManager.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
