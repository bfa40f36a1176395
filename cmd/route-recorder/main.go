// Package main provides the route-recorder CLI entry point: it submits a
// single render job to a Coordinator, prints stage/progress updates, and
// blocks until the job reaches a terminal state or the process is
// interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chicogong/route-recorder/pkg/orchestrator"
	"github.com/chicogong/route-recorder/pkg/settings"
	"github.com/chicogong/route-recorder/pkg/storage"
)

var (
	routeFile    = flag.String("route-file", "", "Path (or s3://, https:// URI) to the GPX/KML route file")
	outputDir    = flag.String("output-dir", "", "Directory to write route-video.mp4 and overlay-data.json into")
	outputID     = flag.String("output-id", "", "Identifier for this render; defaults to a generated UUID")
	userName     = flag.String("user-name", "", "User name to display in the rendered overlay")
	priority     = flag.Int("priority", 0, "Admission queue priority; higher dispatches first")
	settingsPath = flag.String("settings", getEnv("ROUTE_RECORDER_SETTINGS", ""), "Path to a JSON or YAML settings file (optional)")
	archivePrefix = flag.String("archive-uri-prefix", getEnv("ROUTE_RECORDER_ARCHIVE_PREFIX", ""), "If set with -use-s3-archive, remote URI prefix outputs are archived under")
	useS3Archive  = flag.Bool("use-s3-archive", false, "Archive completed renders to S3 using the default AWS credential chain")
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	flag.Parse()

	if *routeFile == "" || *outputDir == "" {
		log.Fatal("-route-file and -output-dir are required")
	}

	absOutputDir, err := filepath.Abs(*outputDir)
	if err != nil {
		log.Fatalf("failed to resolve -output-dir: %v", err)
	}

	s := settings.Default()
	if *settingsPath != "" {
		s, err = settings.Load(*settingsPath)
		if err != nil {
			log.Fatalf("failed to load settings: %v", err)
		}
	}

	// The remote store is wired unconditionally so http:// and https://
	// route_file_path values are always staged locally before analysis.
	// The s3:// backend is registered only with -use-s3-archive, which
	// both allows s3:// route sources and enables archiving completed
	// renders back out to s3://.
	var s3Store storage.Storage
	if *useS3Archive {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.NewS3Storage(ctx)
		cancel()
		if err != nil {
			log.Fatalf("failed to initialize S3 archive: %v", err)
		}
		s3Store = store
	}
	remoteStore := storage.NewMultiStorage(s3Store)
	opts := []orchestrator.Option{orchestrator.WithRemoteStore(remoteStore, *archivePrefix)}

	coordinator := orchestrator.New(s, opts...)
	defer coordinator.Close()

	done := make(chan orchestrator.Completion, 1)
	handle, err := coordinator.StartRender(orchestrator.Request{
		RouteFilePath: *routeFile,
		OutputDir:     absOutputDir,
		OutputID:      *outputID,
		UserName:      *userName,
		Priority:      *priority,
	}, orchestrator.Callbacks{
		OnStageChange: func(stage string, percent int, message string) {
			log.Printf("stage=%s progress=%d%% %s", stage, percent, message)
		},
		OnProgress: func(percent int, message string) {
			log.Printf("progress=%d%% %s", percent, message)
		},
		OnError: func(kind, detail string) {
			log.Printf("error kind=%s detail=%s", kind, detail)
		},
		OnComplete: func(c orchestrator.Completion) {
			done <- c
		},
	})
	if err != nil {
		log.Fatalf("failed to start render: %v", err)
	}

	log.Printf("started render output_id=%s", handle.OutputID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case completion := <-done:
		reportAndExit(completion)
	case <-quit:
		log.Println("interrupt received, canceling render...")
		coordinator.CancelRender(handle.OutputID)
		completion := <-done
		reportAndExit(completion)
	}
}

func reportAndExit(c orchestrator.Completion) {
	if c.Success != nil {
		fmt.Printf("video_url=%s file_size_bytes=%d video_duration_s=%d\n",
			c.Success.VideoURL, c.Success.FileSizeBytes, c.Success.VideoDurationS)
		os.Exit(0)
	}

	fmt.Printf("failed kind=%s detail=%s\n", c.Failure.Kind, c.Failure.Detail)
	os.Exit(1)
}
