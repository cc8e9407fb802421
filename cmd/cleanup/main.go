package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vittamhq/loan-widget/internal/config"
	"github.com/vittamhq/loan-widget/internal/repository/mongo"
	"github.com/vittamhq/loan-widget/internal/storage"
)

const pageSize = 200

// Removes orphan sessions: sessions that never got past creation and have no
// conversation messages. Run periodically from cron.
func main() {
	dryRun := flag.Bool("dry-run", false, "report orphans without deleting")
	flag.Parse()

	godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	db, err := mongo.NewDB(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Close(ctx)

	store, err := storage.NewStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}

	sessions := mongo.NewSessionRepository(db)
	conversations := mongo.NewConversationRepository(db)
	documents := mongo.NewDocumentRepository(db)

	scanned, removed := 0, 0
	for offset := 0; ; offset += pageSize {
		page, err := sessions.List(ctx, pageSize, offset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list sessions")
		}
		if len(page) == 0 {
			break
		}

		for _, s := range page {
			scanned++
			count, err := conversations.CountBySession(ctx, s.SessionID)
			if err != nil {
				log.Error().Err(err).Str("session_id", s.SessionID).Msg("count failed")
				continue
			}
			if count > 0 {
				continue
			}

			if *dryRun {
				log.Info().Str("session_id", s.SessionID).Msg("orphan session (dry run)")
				removed++
				continue
			}

			if err := documents.DeleteBySession(ctx, s.SessionID); err != nil {
				log.Error().Err(err).Str("session_id", s.SessionID).Msg("document cleanup failed")
				continue
			}
			if err := store.RemoveSession(s.SessionID); err != nil {
				log.Warn().Err(err).Str("session_id", s.SessionID).Msg("file cleanup failed")
			}
			if err := sessions.Delete(ctx, s.SessionID); err != nil {
				log.Error().Err(err).Str("session_id", s.SessionID).Msg("session delete failed")
				continue
			}
			removed++
			log.Info().Str("session_id", s.SessionID).Msg("orphan session removed")
		}
	}

	log.Info().Int("scanned", scanned).Int("removed", removed).Bool("dry_run", *dryRun).Msg("cleanup finished")
}
