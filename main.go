package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/RobSonPL/Blog-Ai/config"
	"github.com/RobSonPL/Blog-Ai/exporter"
	"github.com/RobSonPL/Blog-Ai/generator"
	"github.com/RobSonPL/Blog-Ai/history"
	"github.com/RobSonPL/Blog-Ai/logger"
	"github.com/RobSonPL/Blog-Ai/server"
	"github.com/RobSonPL/Blog-Ai/session"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	topic := flag.String("topic", "", "article topic (one-shot mode)")
	category := flag.String("category", string(generator.CategoryTechnology), "article category")
	length := flag.String("length", string(generator.LengthMedium), "article length: short, medium or long")
	out := flag.String("out", "article.html", "output path for the exported document")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	if *verbose && os.Getenv("LOG_LEVEL") == "" {
		os.Setenv("LOG_LEVEL", "debug")
	}
	log := logger.New("blog-ai")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	svc, err := buildService(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client, err := generator.NewClient(svc, svc, logger.New("generator"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	backend, err := history.NewFileBackend(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	store := history.NewStore(backend, logger.New("history"))

	sess, err := session.New(client, store, logger.New("session"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.LogoPath != "" {
		if logo, err := loadLogo(cfg.LogoPath); err != nil {
			log.Warn("logo not loaded", "path", cfg.LogoPath, "error", err)
		} else {
			sess.SetLogo(logo)
		}
	}

	// Web server mode
	if *serve {
		srv, err := server.New(sess, client, logger.New("server"))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Info("starting web server", "addr", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// One-shot mode: generate, export, record.
	if *topic == "" {
		fmt.Fprintln(os.Stderr, "--topic is required (or use --serve)")
		os.Exit(1)
	}

	ctx := context.Background()
	if err := sess.StartGeneration(ctx, *topic, generator.Category(*category), generator.Length(*length)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	snap := sess.Snapshot()
	doc, err := exporter.ExportHTML(*snap.Article, string(snap.Category))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, []byte(doc), 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info("article exported", "title", snap.Article.Title, "path", *out)
	fmt.Println(*out)
}

func buildService(cfg config.Config) (interface {
	generator.TextService
	generator.ImageService
}, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAIServiceFromConfig(&generator.Settings{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			SearchModel: cfg.LLM.SearchModel,
			ImageModel:  cfg.LLM.ImageModel,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
		})
	case "mock":
		return generator.MockService{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}

func loadLogo(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}
