package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/app"
	"github.com/pageza/recipebox/backend/internal/extraction"
	"github.com/pageza/recipebox/backend/internal/logging"
)

// Extractor is the part of the pipeline the seeder drives.
type Extractor interface {
	Extract(ctx context.Context, req extraction.ExtractRequest) (*extraction.Result, error)
}

func main() {
	userID := flag.String("user", "", "user id that will own the seeded recipes")
	file := flag.String("file", "", "file with one recipe link per line (default stdin)")
	batchSize := flag.Int("batch", 5, "number of links extracted concurrently")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if *userID == "" {
		log.Fatal("-user is required")
	}

	in := io.Reader(os.Stdin)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.WithError(err).Fatal("Failed to open link file")
		}
		defer f.Close()
		in = f
	}
	links, err := readLinks(in)
	if err != nil {
		log.WithError(err).Fatal("Failed to read links")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer a.Close()

	saved, failed := seed(ctx, a.Orchestrator, *userID, links, *batchSize, log)
	log.WithFields(logrus.Fields{"saved": saved, "failed": failed}).Info("Seeding finished")
}

// readLinks returns the non-blank lines of r that are not # comments.
func readLinks(r io.Reader) ([]string, error) {
	var links []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links, sc.Err()
}

// seed extracts every link for userID, batchSize at a time. A failing link
// is logged and skipped.
func seed(ctx context.Context, ex Extractor, userID string, links []string, batchSize int, log logrus.FieldLogger) (saved, failed int) {
	if batchSize < 1 {
		batchSize = 1
	}
	var ok, bad atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)
	for i, link := range links {
		g.Go(func() error {
			entry := log.WithFields(logrus.Fields{"n": fmt.Sprintf("%d/%d", i+1, len(links)), "url": link})
			res, err := ex.Extract(gctx, extraction.ExtractRequest{URL: link, UserID: userID})
			if err != nil {
				bad.Add(1)
				entry.WithField("kind", extraction.KindOf(err)).WithError(err).Warn("Failed to seed recipe")
				return nil
			}
			ok.Add(1)
			entry.WithFields(logrus.Fields{
				"recipe_id":    res.Recipe.ID,
				"title":        res.Recipe.Title,
				"needs_review": res.NeedsReview,
			}).Info("Seeded recipe")
			return nil
		})
	}
	_ = g.Wait()
	return int(ok.Load()), int(bad.Load())
}
