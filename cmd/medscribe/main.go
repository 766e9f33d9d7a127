package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/skillsenselab/medscribe/internal/app"
	"github.com/skillsenselab/medscribe/internal/audio"
	"github.com/skillsenselab/medscribe/internal/config"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/notes"
	"github.com/skillsenselab/medscribe/internal/observability"
)

const serviceName = "medscribe"

func main() {
	configFile := flag.String("config", "", "path to config file (default: searched in standard locations)")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "serve"
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}

	var cfg config.Config
	if err := config.LoadConfig(serviceName, &cfg, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.New(ctx, &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "serve":
		err = a.Serve(ctx)
	case "dictate":
		err = dictate(ctx, a)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected serve or dictate)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		a.Log.Error("command failed", logger.Fields("command", cmd, "error", err.Error()))
		os.Exit(1)
	}
}

// dictate records one take from the default microphone, transcribes it,
// compiles a structured note and stores it under the local user.
func dictate(ctx context.Context, a *app.App) error {
	if err := a.OpenDatabase(); err != nil {
		return err
	}
	defer a.Shutdown(ctx)

	mic, err := audio.NewMicSource()
	if err != nil {
		return err
	}
	recorder, err := audio.NewRecorder(mic, "", a.Log)
	if err != nil {
		mic.Close()
		return err
	}
	defer recorder.Cleanup()
	defer mic.Close()

	fmt.Println("Press Enter to start recording.")
	waitEnter()
	recCtx, recSpan := observability.StartSpan(ctx, observability.SpanRecording)
	if err := recorder.Start(); err != nil {
		recSpan.End()
		return err
	}
	fmt.Println("Recording... press Enter to stop.")
	waitEnter()

	handle, err := recorder.Stop()
	if err != nil {
		recSpan.End()
		return err
	}
	if handle == nil {
		recSpan.End()
		return fmt.Errorf("no audio captured")
	}

	digest := handle.Digest()
	size := handle.Size()
	observability.SetSpanAttribute(recCtx, observability.AttrAudioBytes, size)
	recSpan.End()
	fmt.Printf("Captured %d bytes, transcribing...\n", size)

	start := time.Now()
	result, err := a.Orchestrator.Transcribe(ctx, handle)
	if err != nil {
		return err
	}
	fmt.Printf("Transcribed via %s in %s:\n%s\n\n", result.Provider, time.Since(start).Round(time.Millisecond), result.Text)

	compiled, err := a.Compiler.Compile(ctx, result.Text)
	if err != nil {
		return err
	}

	note := &notes.Note{
		UserID:        app.Hostname(),
		Content:       compiled.Content,
		ProcedureType: compiled.ProcedureType,
		Tags:          compiled.Tags,
		Transcript:    result.Text,
		AudioDigest:   digest,
		Language:      result.Language,
		DurationSec:   result.Duration,
	}
	if err := a.Repo.Save(ctx, note); err != nil {
		return err
	}

	fmt.Printf("Note %s saved", note.ID)
	if note.ProcedureType != "" {
		fmt.Printf(" (procedure: %s)", note.ProcedureType)
	}
	fmt.Println()
	fmt.Println(compiled.Content)
	return nil
}

func waitEnter() {
	bufio.NewReader(os.Stdin).ReadString('\n')
}
