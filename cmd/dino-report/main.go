package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/dinobot/internal/db"
	"github.com/banshee-data/dinobot/internal/monitoring"
	"github.com/banshee-data/dinobot/internal/report"
)

var (
	dbPath    = flag.String("db", "dinobot.db", "SQLite database written by dinobot -record")
	sessionID = flag.String("session", "", "Session to report on (latest when empty)")
	pngPath   = flag.String("png", "", "Write a ratio-over-time PNG plot to this path")
	htmlPath  = flag.String("html", "", "Write an interactive HTML chart to this path")
	list      = flag.Bool("list", false, "List recorded sessions and exit")
)

func listSessions(w io.Writer, store *db.DB) error {
	sessions, err := store.Sessions()
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Fprintln(w, s)
	}
	return nil
}

func loadSession(store *db.DB, id string) (*db.Session, error) {
	if id == "" {
		return store.LatestSession()
	}
	return store.Session(id)
}

// writeReport prints the text report and writes any requested artifacts.
func writeReport(w io.Writer, store *db.DB, id, png, html string) error {
	s, err := loadSession(store, id)
	if err != nil {
		return err
	}
	samples, err := store.Samples(s.SessionID)
	if err != nil {
		return fmt.Errorf("load samples: %w", err)
	}

	report.Print(w, s, report.Summarize(samples))

	if png != "" {
		if err := report.WritePlot(png, samples, s.ObstacleRatio); err != nil {
			return err
		}
		monitoring.Logf("wrote plot %s", png)
	}
	if html != "" {
		f, err := os.Create(html)
		if err != nil {
			return err
		}
		if err := report.WriteChart(f, s, samples, s.ObstacleRatio); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		monitoring.Logf("wrote chart %s", html)
	}
	return nil
}

func main() {
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("database %s: %v", *dbPath, err)
	}
	store, err := db.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	if *list {
		if err := listSessions(os.Stdout, store); err != nil {
			log.Fatalf("failed to list sessions: %v", err)
		}
		return
	}

	if err := writeReport(os.Stdout, store, *sessionID, *pngPath, *htmlPath); err != nil {
		log.Fatalf("report failed: %v", err)
	}
}
