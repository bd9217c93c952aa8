// SPDX-License-Identifier: AGPL-3.0-or-later
// Interlocutor - an Opulent Voice radio endpoint
// Copyright (C) 2026 The Interlocutor Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/lmittmann/tint"
	"github.com/opulentvoice/interlocutor/internal/audio"
	"github.com/opulentvoice/interlocutor/internal/callsign"
	"github.com/opulentvoice/interlocutor/internal/chat"
	"github.com/opulentvoice/interlocutor/internal/command"
	"github.com/opulentvoice/interlocutor/internal/config"
	"github.com/opulentvoice/interlocutor/internal/framemgr"
	"github.com/opulentvoice/interlocutor/internal/metrics"
	"github.com/opulentvoice/interlocutor/internal/protocol"
	"github.com/opulentvoice/interlocutor/internal/protoerr"
	"github.com/opulentvoice/interlocutor/internal/reassembly"
	"github.com/opulentvoice/interlocutor/internal/statusapi"
	"github.com/opulentvoice/interlocutor/internal/stats"
	"github.com/opulentvoice/interlocutor/internal/transport"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

// flagOverrides holds the raw CLI flag values before they are layered
// onto the loaded configuration.
type flagOverrides struct {
	ip           string
	port         int
	listenPort   int
	pttPin       int
	ledPin       int
	configPath   string
	createConfig bool
	chatOnly     bool
	verbose      bool
	quiet        bool
	listAudio    bool
	testAudio    bool
	setupAudio   bool
}

// NewCommand builds the root cobra command.
func NewCommand(version, commit string) *cobra.Command {
	flags := &flagOverrides{}

	cmd := &cobra.Command{
		Use:     "interlocutor [callsign]",
		Short:   "A digital voice radio endpoint speaking the Opulent Voice protocol",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Args:    cobra.MaximumNArgs(1),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var stationArg string
			if len(args) == 1 {
				stationArg = args[0]
			}
			return runRoot(cmd, stationArg, flags)
		},
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	f := cmd.Flags()
	f.StringVarP(&flags.ip, "ip", "i", "", "target peer IP address")
	f.IntVarP(&flags.port, "port", "p", 0, "base UDP port for the target peer (overrides the configured voice/text/control ports)")
	f.IntVarP(&flags.listenPort, "listen-port", "l", 0, "local UDP port to receive on")
	f.IntVar(&flags.pttPin, "ptt-pin", 0, "GPIO pin number wired to the PTT button")
	f.IntVar(&flags.ledPin, "led-pin", 0, "GPIO pin number wired to the status LED")
	f.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML configuration file")
	f.BoolVar(&flags.createConfig, "create-config", false, "write the default configuration to --config and exit")
	f.BoolVar(&flags.chatOnly, "chat-only", false, "disable the audio pipeline and run text/control traffic only")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "only log warnings and errors")
	f.BoolVar(&flags.listAudio, "list-audio", false, "list detected audio capture/playback devices and exit")
	f.BoolVar(&flags.testAudio, "test-audio", false, "run a short audio loopback self-test and exit")
	f.BoolVar(&flags.setupAudio, "setup-audio", false, "run the interactive audio device setup wizard and exit")

	return cmd
}

func runRoot(cmd *cobra.Command, stationArg string, flags *flagOverrides) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(flags, stationArg)
	if err != nil {
		return err
	}

	if flags.createConfig {
		path := flags.configPath
		if path == "" {
			path = "interlocutor.yaml"
		}
		if err := config.WriteFile(path, cfg); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("wrote default configuration to %s\n", path)
		return nil
	}

	setupLogger(cfg)
	slog.Info("interlocutor starting", "version", cmd.Annotations["version"], "commit", cmd.Annotations["commit"])

	if flags.listAudio || flags.testAudio || flags.setupAudio {
		return runAudioUtility(flags)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w (pass a callsign, or run with --create-config to write a starting point)", err)
	}

	scheduler, err := setupScheduler()
	if err != nil {
		return err
	}

	var tracerCleanup func(context.Context) error
	if cfg.Metrics.OTLPEndpoint != "" {
		tracerCleanup = initTracer(cfg)
	} else {
		tracerCleanup = func(context.Context) error { return nil }
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	statusServer := statusapi.New(cfg.Metrics.Bind, cfg.Metrics.Port, engine.counters)
	engine.status = statusServer
	go func() {
		if err := statusServer.Start(); err != nil {
			slog.Error("status server exited", "error", err)
		}
	}()

	repeatJob := func(interval time.Duration, name string, task func()) {
		_, err := scheduler.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(task),
		)
		if err != nil {
			slog.Error("failed to schedule job", "job", name, "error", err)
		}
	}
	repeatJob(time.Minute, "stats-log", func() {
		snap := engine.counters.Snapshot()
		slog.Debug("transmission statistics", "sent", snap.TotalFramesSent, "received", snap.FramesReceived, "sendErrors", snap.SendErrors, "receiveErrors", snap.ReceiveErrors)
		statusServer.Broadcast("stats", snap)
	})
	scheduler.Start()

	runCtx, cancelRun := context.WithCancel(ctx)

	// The audio/TX, RX, and UI threads of §5 map onto three goroutines
	// under one errgroup: a fatal error or ctx cancellation on any one
	// of them unwinds the others via the shared context.
	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		engine.runTX(gCtx)
		return nil
	})
	g.Go(func() error {
		engine.runRX(gCtx)
		return nil
	})

	if !cfg.ChatOnly {
		slog.Warn("no audio capture backend is wired into this build; running in text/control-only mode", "ptt_pin", flags.pttPin, "led_pin", flags.ledPin)
	}

	g.Go(func() error {
		runTerminalUI(gCtx, engine)
		return nil
	})

	stop := func(sig os.Signal) {
		slog.Error("shutting down due to signal", "signal", sig)
		cancelRun()

		shutdownWg := new(sync.WaitGroup)

		shutdownWg.Add(1)
		go func() {
			defer shutdownWg.Done()
			if err := scheduler.StopJobs(); err != nil {
				slog.Error("failed to stop scheduler jobs", "error", err)
			}
			if err := scheduler.Shutdown(); err != nil {
				slog.Error("failed to stop scheduler", "error", err)
			}
		}()

		shutdownWg.Add(1)
		go func() {
			defer shutdownWg.Done()
			const timeout = 5 * time.Second
			tracerCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := tracerCleanup(tracerCtx); err != nil {
				slog.Error("failed to shut down tracer", "error", err)
			}
		}()

		shutdownWg.Add(1)
		go func() {
			defer shutdownWg.Done()
			const timeout = 5 * time.Second
			statusCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := statusServer.Stop(statusCtx); err != nil {
				slog.Error("failed to stop status server", "error", err)
			}
		}()

		shutdownWg.Add(1)
		go func() {
			defer shutdownWg.Done()
			if err := engine.transport.Close(); err != nil {
				slog.Error("failed to close transport", "error", err)
			}
		}()

		const timeout = 10 * time.Second
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = g.Wait()
			shutdownWg.Wait()
		}()
		select {
		case <-done:
			slog.Info("shutdown complete")
			os.Exit(0)
		case <-time.After(timeout):
			slog.Error("shutdown timed out")
			os.Exit(1)
		}
	}

	shutdown.AddWithParam(stop)
	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	return nil
}

// loadConfig layers the YAML config file (if any) and CLI flag
// overrides on top of the built-in defaults. Flags always win: they
// are how an operator overrides a saved config for one run.
func loadConfig(flags *flagOverrides, stationArg string) (config.Config, error) {
	cfg, err := config.LoadFile(flags.configPath, config.Default())
	if err != nil {
		return config.Config{}, err
	}

	if stationArg != "" {
		cfg.Station.Callsign = stationArg
	}
	if flags.ip != "" {
		cfg.Station.TargetIP = flags.ip
	}
	if flags.port != 0 {
		cfg.Ports.Voice = flags.port
		cfg.Ports.Text = flags.port + 1
		cfg.Ports.Control = flags.port + 2
	}
	if flags.listenPort != 0 {
		cfg.Ports.Listen = flags.listenPort
	}
	if flags.pttPin != 0 {
		cfg.GPIO.PTTPin = flags.pttPin
	}
	if flags.ledPin != 0 {
		cfg.GPIO.LEDPin = flags.ledPin
	}
	if flags.chatOnly {
		cfg.ChatOnly = true
	}
	if flags.verbose {
		cfg.LogLevel = config.LogLevelDebug
	}
	if flags.quiet {
		cfg.LogLevel = config.LogLevelWarn
	}

	return cfg, nil
}

func setupLogger(cfg config.Config) {
	var logger *slog.Logger
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	case config.LogLevelWarn:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	case config.LogLevelError:
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelError}))
	case config.LogLevelInfo:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	default:
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
}

func setupScheduler() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return scheduler, nil
}

func initTracer(cfg config.Config) func(context.Context) error {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Metrics.OTLPEndpoint),
		),
	)
	if err != nil {
		slog.Error("failed to create trace exporter", "error", err)
		return func(context.Context) error { return nil }
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "interlocutor"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		slog.Error("could not set trace resources", "error", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown
}

func runAudioUtility(flags *flagOverrides) error {
	switch {
	case flags.listAudio:
		fmt.Println("no audio backend is compiled into this build; audio device enumeration is a hardware-specific integration left to the cmd layer's Capture/Encoder backend")
	case flags.testAudio:
		fmt.Println("no audio backend is compiled into this build; nothing to loop back")
	case flags.setupAudio:
		fmt.Println("no audio backend is compiled into this build; nothing to configure")
	}
	return nil
}

// engine wires together the protocol stack, frame manager, transport,
// chat manager, and command dispatcher for one run of the program.
type engine struct {
	cfg       config.Config
	station   callsign.ID
	stack     *protocol.Stack
	transport *transport.Transport
	frames    *framemgr.Manager
	chat      *chat.Manager
	dispatch  *command.Dispatcher
	counters  *stats.Counters
	metrics   *metrics.Metrics
	status    *statusapi.Server

	// ptt, capture, and encoder are the audio external collaborators.
	// None are wired into this build (no ALSA/PortAudio/GPIO backend
	// is compiled in), so runTX always takes the idle branch below,
	// but the hooks exist for a backend to attach to.
	ptt     audio.PTTSource
	capture audio.Capture
	encoder audio.Encoder
}

func newEngine(cfg config.Config) (*engine, error) {
	station, err := callsign.New(cfg.Station.Callsign)
	if err != nil {
		return nil, fmt.Errorf("invalid station callsign: %w", err)
	}

	destIP := net.ParseIP(cfg.Station.TargetIP)
	if destIP == nil {
		return nil, fmt.Errorf("invalid target IP %q", cfg.Station.TargetIP)
	}

	// The real UDP socket is symmetric: both ends bind and send on the
	// same configured listen port. Per-class destination ports
	// (voice/text/control) are a protocol-level concept embedded in
	// each wire frame's inner UDP header by the Stack, not a property
	// of this outer socket.
	targetAddr := &net.UDPAddr{IP: destIP, Port: cfg.Ports.Listen}
	t, err := transport.Listen(cfg.Ports.Listen, targetAddr, slog.Default())
	if err != nil {
		return nil, err
	}

	stack := protocol.NewStack(station, destIP)
	counters := &stats.Counters{}
	m := metrics.NewMetrics()

	targetType := framemgr.TargetModem
	if cfg.Station.TargetType == "computer" {
		targetType = framemgr.TargetComputer
	}
	keepalive := time.Duration(cfg.KeepaliveIntervalSeconds) * time.Second

	frames := framemgr.New(stack, targetType, keepalive, counters, m)
	chatMgr := chat.New(frames)

	dispatcher := command.NewDispatcher()
	if err := dispatcher.Register(command.NewStatsCommand(counters)); err != nil {
		return nil, err
	}
	if err := dispatcher.Register(command.NewHelpCommand(dispatcher)); err != nil {
		return nil, err
	}

	return &engine{
		cfg:       cfg,
		station:   station,
		stack:     stack,
		transport: t,
		frames:    frames,
		chat:      chatMgr,
		dispatch:  dispatcher,
		counters:  counters,
		metrics:   m,
	}, nil
}

// tickInterval is the Opulent Voice audio cadence: one frame every 40ms.
const tickInterval = 40 * time.Millisecond

// runTX drives the audio-rate priority arbitration. When a PTT source
// is held, captured audio wins every slot; otherwise control, text,
// and keepalive traffic are arbitrated on the idle branch. With no
// audio backend wired in, e.ptt is nil and every tick takes the idle
// branch.
func (e *engine) runTX(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var pttWasActive bool
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if e.ptt != nil && e.ptt.Active() {
				if !pttWasActive {
					e.frames.StartTalkSpurt()
					pttWasActive = true
				}
				e.sendVoiceFrame(ctx)
				continue
			}
			pttWasActive = false

			w, class, ok := e.frames.TickIdle(now)
			if !ok {
				continue
			}
			if err := e.transport.Send(ctx, w); err != nil {
				slog.Debug("failed to send frame", "class", class, "error", err)
			}
		}
	}
}

// sendVoiceFrame captures and encodes one PCM frame and sends the
// resulting OPUS packet's wire frames. Errors are logged and dropped;
// a lost voice tick is not worth retrying at audio rate.
func (e *engine) sendVoiceFrame(ctx context.Context) {
	pcm, err := e.capture.Read(ctx)
	if err != nil {
		slog.Debug("audio capture failed", "error", err)
		return
	}
	opusPacket, err := e.encoder.Encode(pcm)
	if err != nil {
		slog.Debug("opus encode failed", "error", err)
		return
	}
	frames, err := e.frames.TickVoice(opusPacket)
	if err != nil {
		slog.Debug("failed to build voice frames", "error", err)
		return
	}
	for _, w := range frames {
		if err := e.transport.Send(ctx, w); err != nil {
			slog.Debug("failed to send voice frame", "error", err)
		}
	}
}

// runRX owns the reassembly buffer and blocks on the UDP socket,
// dispatching complete messages to the command layer or the terminal.
func (e *engine) runRX(ctx context.Context) {
	reassembler := reassembly.New()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		chunk, err := e.transport.Receive()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			slog.Debug("receive error", "error", err)
			e.counters.ReceiveErrors.Add(1)
			continue
		}
		e.counters.FramesReceived.Add(1)
		e.metrics.RecordReceived()

		messages, err := reassembler.Feed(chunk)
		if err != nil {
			slog.Debug("reassembly error", "error", err)
			reason := "decode"
			if errors.Is(err, protoerr.ErrReassemblyOverflow) {
				reason = "overflow"
			}
			e.metrics.RecordReassemblyError(reason)
		}
		for _, msg := range messages {
			parsed, err := protocol.Parse(msg)
			if err != nil {
				slog.Debug("failed to parse inbound message", "error", err)
				continue
			}
			if parsed.DestPort == protocol.PortText || parsed.DestPort == protocol.PortControl {
				line := string(parsed.Payload)
				if result, ok := e.dispatch.Dispatch(ctx, line); ok {
					fmt.Println(result.Summary)
					if e.status != nil {
						e.status.Broadcast("command", result)
					}
				} else {
					fmt.Printf("%s: %s\n", parsed.SourceIP, line)
					if e.status != nil {
						e.status.Broadcast("text", map[string]string{"from": parsed.SourceIP.String(), "text": line})
					}
				}
			}
		}
	}
}

// runTerminalUI is the reference "UI thread": it reads lines of text
// from standard input and feeds them to the chat manager, which
// buffers or queues them depending on PTT state. Without a wired PTT
// source, every line is queued immediately.
func runTerminalUI(ctx context.Context, e *engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Text()
		if result, ok := e.dispatch.Dispatch(ctx, line); ok {
			fmt.Println(result.Summary)
			continue
		}
		e.chat.HandleInput(line)
	}
}
