package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/fisokur/fisokur/internal/scanning"
	"github.com/fisokur/fisokur/internal/server"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("fisokur")
	var (
		engineType  = fs.StringLong("engine", "openai", "Extraction engine: 'openai' or 'gemini'")
		apiKey      = fs.StringLong("api-key", "", "OpenAI-compatible API key (or set OPENAI_API_KEY env var)")
		baseURL     = fs.StringLong("base-url", "", "OpenAI-compatible chat-completions URL (default: api.openai.com)")
		model       = fs.StringLong("model", "", "Text model id")
		visionModel = fs.StringLong("vision-model", "", "Vision model id override")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "", "Google Gemini model name")
		mode        = fs.StringLong("mode", "receipt", "Extraction mode: 'receipt' or 'text'")
		instruction = fs.StringLong("instruction", "", "Custom OCR instruction (text mode only)")
		serve       = fs.BoolLong("serve", "Run the HTTP extraction API instead of one-shot mode")
		port        = fs.IntLong("port", 8080, "HTTP server port (with --serve)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional, with --serve)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional, with --serve)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FISOKUR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var (
		extractor scanning.Extractor
		err       error
	)
	switch *engineType {
	case "openai":
		key := *apiKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		extractor, err = scanning.NewOpenAI(scanning.OpenAIConfig{
			APIKey:      key,
			BaseURL:     *baseURL,
			Model:       *model,
			VisionModel: *visionModel,
		})
		if err != nil {
			slog.Error("Failed to initialize OpenAI engine", "error", err)
			os.Exit(1)
		}
	case "gemini":
		key := *geminiKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		extractor, err = scanning.NewGemini(key, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini engine", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid engine type", "type", *engineType, "valid", "openai or gemini")
		os.Exit(1)
	}
	defer extractor.Close()

	if *serve {
		runServer(extractor, *port, server.BasicAuth{Username: *authUser, Password: *authPass})
		return
	}

	files := fs.GetArgs()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: at least one image file is required (or use --serve)")
		os.Exit(1)
	}

	if err := runOnce(extractor, *mode, *instruction, files); err != nil {
		slog.Error("Extraction failed", "error", err)
		os.Exit(1)
	}
}

// runOnce extracts each file in turn and prints the result to stdout: raw
// text in text mode, indented JSON in receipt mode.
func runOnce(extractor scanning.Extractor, mode, instruction string, files []string) error {
	ctx := context.Background()

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		img, err := scanning.PrepareImage(scanning.Image{Data: data, Name: path})
		if err != nil {
			return fmt.Errorf("preparing %s: %w", path, err)
		}

		switch mode {
		case "text":
			text, err := extractor.ExtractText(ctx, img, instruction)
			if err != nil {
				return fmt.Errorf("extracting text from %s: %w", path, err)
			}
			fmt.Println(text)
		case "receipt":
			rec, err := extractor.ExtractReceipt(ctx, img)
			if err != nil {
				return fmt.Errorf("extracting receipt from %s: %w", path, err)
			}
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		default:
			return fmt.Errorf("invalid mode %q (valid: receipt, text)", mode)
		}
	}

	return nil
}

func runServer(extractor scanning.Extractor, port int, auth server.BasicAuth) {
	srv := server.New(extractor, auth)

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := srv.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if auth.Username != "" || auth.Password != "" {
		slog.Info("Basic auth enabled", "user", auth.Username)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
