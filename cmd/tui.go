package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Frederikmahipal/ba-client/internal/player"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/Frederikmahipal/ba-client/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playback dashboard.
//
// Wires the full engine: the headless device driver, the device adapter, the
// activation sequencer and the single-writer state store, then hands the
// store's projections to the bubbletea model.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Player.TUILogPath())
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	deviceName := cmd.String("device")
	if deviceName == "" {
		deviceName = r.config.Player.DeviceName
	}

	sdk := player.NewConnectDevice(r.spotify, player.SDKOptions{
		Name:   deviceName,
		Volume: r.config.Player.Volume,
	}, r.config.Player.NowPollInterval(), fileLogger)

	adapter := player.NewAdapter(sdk, nil, fileLogger)
	sequencer := player.NewSequencer(r.spotify, r.config.Player, fileLogger)
	store := player.NewStore(r.spotify, adapter, sequencer, r.config.Player, fileLogger)

	adapter.OnStateChange(store.ApplyPlayerState)
	sdk.AddListener(player.EventReady, func(e player.Event) {
		go func() {
			if err := store.ResumeOnReady(ctx, e.DeviceID); err != nil && !errors.Is(err, context.Canceled) {
				fileLogger.Warn("resume on ready failed", "error", err)
			}
		}()
	})

	engineCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := adapter.Connect(engineCtx); err != nil {
		return err
	}
	defer adapter.Disconnect()

	go store.Run(engineCtx)

	model := ui.NewModel(engineCtx, store, adapter, int(r.config.Player.Volume*100))
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
