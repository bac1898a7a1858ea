package main

import (
	"flag"
	"os"

	"github.com/salem-notes/notes-backend/internal/logger"
	"github.com/salem-notes/notes-backend/notesservice"
)

func main() {
	// Optional build-target flag override (local | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud)")
	flag.Parse()

	if *buildTarget != "" {
		_ = os.Setenv("NOTES_BUILD_TARGET", *buildTarget)
	}

	log := logger.New("notes-service")
	if err := notesservice.Run(); err != nil {
		log.Fatal().Err(err).Msg("service exited with error")
	}
}
