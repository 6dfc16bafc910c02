package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scipunch/newsdesk/agent/gemini"
	"github.com/scipunch/newsdesk/cache"
	"github.com/scipunch/newsdesk/config"
	"github.com/scipunch/newsdesk/feed"
	"github.com/scipunch/newsdesk/filter"
	"github.com/scipunch/newsdesk/news"
	"github.com/scipunch/newsdesk/notify"
	"github.com/scipunch/newsdesk/preview"
)

//go:embed templates/digest.html
var templateFS embed.FS

// digestData is what the digest template renders.
type digestData struct {
	GeneratedAt time.Time
	Language    feed.Language
	Error       string
	Articles    []feed.Article
	Previews    map[string]preview.Metadata
	Toasts      []notify.Toast
}

func main() {
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfgPath string
	var cleanCache bool
	var lang string
	var more int
	var pdf bool
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.BoolVar(&cleanCache, "clean", false, "remove all cache entries")
	flag.StringVar(&lang, "lang", "", "feed language (en or zh-HK, overrides config)")
	flag.IntVar(&more, "more", 0, "number of additional load-more fetches")
	flag.BoolVar(&pdf, "pdf", false, "also export the digest as PDF")
	flag.Parse()

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			log.Fatalf("failed to write default config with %s", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the feed cache
	store, err := cache.Open(conf.CachePath)
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
	defer store.Close()

	// Handle -clean flag
	if cleanCache {
		if err := store.Clear(); err != nil {
			log.Fatalf("failed to clear cache: %v", err)
		}
		slog.Info("cache cleared successfully")
		return
	}

	// Show cache stats
	stats, err := store.Stats()
	if err != nil {
		slog.Warn("failed to get cache stats", "error", err)
	} else {
		slog.Info("cache initialized", "entries", stats.Entries)
	}

	// Load credentials, prompting on first run
	creds, err := config.LoadOrPromptGeminiCredentials(config.DefaultCredentialsPath())
	if err != nil {
		log.Fatalf("failed to load Gemini credentials: %s", err)
	}

	// Create zap logger for agent request logging
	zapConf := zap.NewDevelopmentConfig()
	zapConf.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	zlog, err := zapConf.Build()
	if err != nil {
		slog.Warn("failed to build agent logger, agent logging disabled", "error", err)
		zlog = zap.NewNop()
	}
	defer zlog.Sync()

	ag, err := gemini.New(ctx, creds, zlog)
	if err != nil {
		log.Fatalf("failed to initialize gemini agent: %s", err)
	}
	slog.Info("initialized agent", "name", ag.Name())

	language := conf.Language
	if lang != "" {
		language = lang
	}

	f := news.New(store, ag)
	f.Refresh(ctx, language)

	for i := 0; i < more; i++ {
		select {
		case <-ctx.Done():
			slog.Info("interrupted by user, exiting gracefully")
			return
		default:
		}
		f.LoadMore(ctx, language)
	}

	state := f.Snapshot()
	slog.Info("feed fetched", "articles", len(state.Articles), "error", state.Error)

	// Apply digest filters
	articles := state.Articles
	if len(conf.DigestFilters) > 0 {
		pipeline, err := filter.NewPipeline(conf.Filters)
		if err != nil {
			log.Fatalf("failed to initialize filters: %s", err)
		}
		articles = pipeline.Apply(articles, conf.DigestFilters)
		slog.Info("filters applied", "kept", len(articles), "of", len(state.Articles))
	}

	// Unlock reading achievements
	center := notify.NewCenter(time.Duration(conf.ToastSeconds) * time.Second)
	if len(articles) > 0 {
		center.Unlock("first-read", "Fresh off the press", "You loaded your first news digest")
	}
	if len(articles) >= 3*gemini.BatchSize {
		center.Unlock("deep-reader", "Deep reader", "Fifteen stories in one sitting")
	}

	// Resolve source previews if configured
	previews := make(map[string]preview.Metadata)
	if conf.Previews {
		fetcher := preview.NewFetcher(nil)
		for _, a := range articles {
			select {
			case <-ctx.Done():
				slog.Info("interrupted by user during previews, exiting gracefully")
				return
			default:
			}
			meta, err := fetcher.Fetch(ctx, a.SourceURL)
			if err != nil {
				slog.Warn("source preview failed", "url", a.SourceURL, "error", err)
				continue
			}
			previews[a.SourceURL] = meta
		}
	}

	// Generate HTML digest
	t := template.Must(template.ParseFS(templateFS, "templates/digest.html"))
	if err := os.MkdirAll(conf.OutputDirectory, os.ModePerm); err != nil {
		log.Fatalf("failed to create output directory at '%s' with %s", conf.OutputDirectory, err)
	}
	htmlPath := filepath.Join(conf.OutputDirectory, "digest.html")
	out, err := os.Create(htmlPath)
	if err != nil {
		log.Fatal("could not create digest HTML file ", err)
	}
	defer out.Close()

	err = t.Execute(out, digestData{
		GeneratedAt: time.Now(),
		Language:    language,
		Error:       state.Error,
		Articles:    articles,
		Previews:    previews,
		Toasts:      center.Active(time.Now()),
	})
	if err != nil {
		log.Fatal("could not render digest HTML ", err)
	}
	slog.Info("HTML digest generated", "path", htmlPath)

	if pdf {
		pdfPath := filepath.Join(conf.OutputDirectory, "digest.pdf")
		if err := exportPDF(htmlPath, pdfPath); err != nil {
			slog.Error("failed to export PDF", "error", err)
		} else {
			slog.Info("PDF digest generated", "path", pdfPath)
		}
	}

	if state.Error != "" {
		fmt.Fprintln(os.Stderr, state.Error)
	}
}
