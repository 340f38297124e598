package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faiface/beep"
	"github.com/fatih/color"

	"github.com/jscyril/automix/api"
	"github.com/jscyril/automix/internal/audio"
	"github.com/jscyril/automix/internal/config"
	"github.com/jscyril/automix/internal/library"
	"github.com/jscyril/automix/internal/playlist"
	"github.com/jscyril/automix/pkg/events"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	live := flag.Bool("live", false, "perform the mix through the speaker instead of only simulating")
	lead := flag.Float64("lead", 3, "seconds of outgoing track to play before the mix point in live mode")
	flag.Parse()

	if flag.NArg() != 2 {
		return fmt.Errorf("usage: automix [-live] [-lead N] <outgoing> <incoming>")
	}

	// Load configuration
	cfg, err := config.LoadOrCreate(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	outgoing, err := loadTrack(flag.Arg(0))
	if err != nil {
		return err
	}
	incoming, err := loadTrack(flag.Arg(1))
	if err != nil {
		return err
	}

	queue := playlist.NewQueue(time.Duration(cfg.CrossfadeSeconds * float64(time.Second)))
	queue.Add(outgoing, incoming)

	bus := events.NewBus()
	defer bus.Close()

	var backend api.Backend
	var speaker *audio.SpeakerBackend
	if *live {
		speaker, err = audio.NewSpeakerBackend(beep.SampleRate(cfg.SampleRate))
		if err != nil {
			return fmt.Errorf("init backend: %w", err)
		}
		defer speaker.Close()
		backend = speaker
	}

	scheduler := audio.NewScheduler(backend, queue, bus)
	scheduler.SetDebugMode(cfg.Debug)
	scheduler.SetCurveResolution(cfg.CurveResolution)

	report, err := scheduler.SimulateMixSession(outgoing, incoming)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	printReport(report)

	if !*live {
		return nil
	}

	return runLive(ctx, scheduler, bus, outgoing, incoming, report, *lead)
}

// runLive performs the crossfade for real: the outgoing track's tail plays
// for lead seconds, the engine fades into the incoming track, and we wait for
// the session to complete.
func runLive(ctx context.Context, scheduler *audio.Scheduler, bus *events.Bus, outgoing, incoming *api.Track, report *api.MixReport, lead float64) error {
	position := report.MixPoint - lead
	if position < 0 {
		position = 0
	}

	scheduled := bus.Subscribe(api.EventMixScheduled)
	completed := bus.Subscribe(api.EventMixCompleted)

	if err := scheduler.StartAutoMix(ctx, outgoing, incoming, position); err != nil {
		return fmt.Errorf("start auto mix: %w", err)
	}

	select {
	case ev := <-scheduled:
		cue := ev.Payload.(api.MixCue)
		color.Cyan("Mix armed: starts at %.2fs on the playback clock, %.1fs long", cue.StartTime, cue.Duration)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-completed:
		color.Green("Mix completed: now playing %s", incoming.Title)
	case <-ctx.Done():
		return ctx.Err()
	}

	// Let the incoming track play out until interrupted.
	<-ctx.Done()
	return nil
}

func loadTrack(path string) (*api.Track, error) {
	scanner := library.NewScanner(1)
	track, err := scanner.ScanFile(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	lib := library.NewLibrary()
	lib.AddTrack(track)
	if err := lib.LoadBuffer(track); err != nil {
		return nil, err
	}

	if track.Analysis == nil {
		color.Yellow("No analysis sidecar for %s; mixing unaligned", track.Title)
	}
	return track, nil
}

func printReport(r *api.MixReport) {
	bold := color.New(color.Bold)
	bold.Println("Mix plan")
	fmt.Printf("  mix point:       %.2fs into outgoing\n", r.MixPoint)
	fmt.Printf("  crossfade:       %.1fs\n", r.CrossfadeDuration)
	fmt.Printf("  outgoing BPM:    %.1f\n", r.OutgoingBPM)
	fmt.Printf("  incoming BPM:    %.1f\n", r.IncomingBPM)
	if r.ResampleNeeded {
		color.Cyan("  tempo correct:   yes (ratio %.4f)", r.ResampleRatio)
	} else {
		fmt.Println("  tempo correct:   no")
	}
	fmt.Printf("  anchor beat:     %.2fs\n", r.AnchorBeat)
	fmt.Printf("  incoming offset: %.2fs\n", r.IncomingOffset)
}
