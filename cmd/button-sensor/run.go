package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/web"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the button daemon",
	Long: `Open the configured source and classify button presses until interrupted
(Ctrl+C) or SIGTERM. Flags override the matching config file values.

Example:
  button-sensor run -c /etc/button-sensor/desk.yaml
  button-sensor run --poll 5ms --broker tcp://localhost:1883 --http :8080`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("config", "c", "", "path to config file (defaults built in)")
	f.Duration("poll", 0, "polling interval")
	f.String("broker", "", `MQTT broker address ("" disables MQTT)`)
	f.String("http", "", `HTTP status address ("" disables the status server)`)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	return run(cfg)
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("poll") {
		poll, _ := f.GetDuration("poll")
		cfg.Poll = config.Duration(poll)
	}
	if f.Changed("broker") {
		cfg.MQTT.Broker, _ = f.GetString("broker")
	}
	if f.Changed("http") {
		cfg.HTTP.Addr, _ = f.GetString("http")
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func run(cfg *config.Config) error {
	logger := cfg.Log.NewLogger()
	log := logger.WithField("component", "main")

	src, err := openSource(cfg.Source)
	if err != nil {
		return err
	}
	defer src.reader.Close()

	// MQTT is optional; without a broker events only reach the web server.
	var publisher mqtt.Publisher = noopPublisher{}
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Name:     cfg.Name,
			Topics:   mqtt.NewTopics(cfg.MQTT.Prefix),
			Logger:   logger.WithField("component", "mqtt"),
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer pub.Close()
		publisher, mqttStatus = pub, pub

		if cfg.Source.Kind == config.SourceMQTT {
			if err := pub.SubscribeLevel(src.injected.Set); err != nil {
				return fmt.Errorf("subscribe level topic: %w", err)
			}
		}
	}

	timing := cfg.Timing.Engine()
	tracker := status.NewTracker(time.Now(), status.Config{
		Name:             cfg.Name,
		Source:           string(cfg.Source.Kind),
		PollMs:           cfg.Poll.Duration().Milliseconds(),
		DebounceMs:       timing.Debounce.Milliseconds(),
		ClickMs:          timing.Click.Milliseconds(),
		LongPressMs:      timing.LongPress.Milliseconds(),
		IdleMs:           timing.Idle.Milliseconds(),
		DuringIntervalMs: timing.DuringInterval.Milliseconds(),
		HeartbeatMs:      cfg.MQTT.Heartbeat.Duration().Milliseconds(),
		Broker:           cfg.MQTT.Broker,
		Prefix:           cfg.MQTT.Prefix,
		HTTPAddr:         cfg.HTTP.Addr,
	})
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	var hub *web.Hub
	if cfg.HTTP.Addr != "" {
		hub = web.NewHub(cfg.Name, logger.WithField("component", "websocket"))
		opts := web.Options{Hub: hub, Logger: logger.WithField("component", "http")}
		if cfg.Source.Kind == config.SourceHTTP {
			opts.Injected = src.injected
		}
		srv := web.New(cfg.HTTP.Addr, tracker, opts)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server error")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		log.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	button := logic.NewButton(src.reader, timing)
	events, _ := cfg.EventTypes()
	registerHandlers(button, events, &eventSink{
		publisher: publisher,
		hub:       hub,
		tracker:   tracker,
		log:       logger.WithField("component", "events"),
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	}

	log.WithFields(logrus.Fields{
		"name":       cfg.Name,
		"source":     cfg.Source.Kind,
		"poll":       cfg.Poll,
		"debounce":   timing.Debounce,
		"click":      timing.Click,
		"long_press": timing.LongPress,
		"events":     events,
	}).Info("started")

	ticker := time.NewTicker(cfg.Poll.Duration())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	if src.done != nil {
		// Quitting from the keyboard is an interrupt.
		go func() {
			<-src.done
			select {
			case sigCh <- syscall.SIGINT:
			default:
			}
		}()
	}

	return runLoop(button, publisher, mqttStatus, tracker, cfg.MQTT.Heartbeat.Duration(),
		time.Now, ticker.C, sigCh, log)
}

// eventSink fans a classified event out to MQTT, websocket clients and the
// status tracker. Publish failures are logged and never stop the loop.
type eventSink struct {
	publisher mqtt.Publisher
	hub       *web.Hub
	tracker   *status.Tracker
	log       *logrus.Entry
}

func (s *eventSink) Handle(ev logic.Event) {
	fields := logrus.Fields{"event": ev.Type}
	if ev.Clicks > 0 {
		fields["clicks"] = ev.Clicks
	}
	if ev.PressedFor > 0 {
		fields["pressed"] = ev.PressedFor
	}
	entry := s.log.WithFields(fields)
	if ev.Type == logic.EventDuringLongPress {
		entry.Debug("button event")
	} else {
		entry.Info("button event")
	}

	if err := s.publisher.Publish(ev); err != nil {
		s.log.WithError(err).WithField("event", ev.Type).Warn("publish error")
	}
	if s.hub != nil {
		s.hub.Broadcast(ev)
	}
	if s.tracker != nil {
		s.tracker.RecordEvent(ev)
	}
}

// registerHandlers routes the chosen event kinds to h. Kinds left out are
// still classified and counted but not forwarded, and leaving out
// DOUBLE_CLICK and MULTI_CLICK lets single clicks fire without waiting for
// the click window.
func registerHandlers(b *logic.Button, types []logic.EventType, h logic.Handler) {
	for _, t := range types {
		b.On(t, h)
	}
}

func runLoop(button *logic.Button, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal, log *logrus.Entry) error {
	startTime := now()
	lastHeartbeat := startTime

	// The engine observes the instant taken for the current tick.
	current := startTime
	button.SetClock(func() time.Time { return current })

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(status.ButtonStateOf(button, current), button.EventCountsSnapshot())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			log.Infof("received %s, shutting down", signalName)

			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refresh()
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.WithError(err).Warn("failed to publish shutdown event")
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case <-tick:
			current = now()
			if _, err := button.Tick(); err != nil {
				log.WithError(err).Warn("source read error")
				continue
			}
			refresh()

			if heartbeat > 0 && current.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = current
				hb := mqtt.SystemEvent{
					Timestamp: current,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					hb.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				counts := button.EventCountsSnapshot()
				log.WithFields(logrus.Fields{
					"uptime": current.Sub(startTime),
					"clicks": counts[logic.EventClick],
					"long":   counts[logic.EventLongPressStart],
				}).Info("heartbeat")
				if err := publisher.PublishSystem(hb); err != nil {
					log.WithError(err).Warn("heartbeat publish error")
				}
			}
		}
	}
}

// noopPublisher stands in when no broker is configured.
type noopPublisher struct{}

func (noopPublisher) Publish(logic.Event) error { return nil }
func (noopPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (noopPublisher) Close() error { return nil }
