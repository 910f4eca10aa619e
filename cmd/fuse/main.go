package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fusion-demo/internal/application/usecases"
	"fusion-demo/internal/config"
	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/repositories"
	domainservices "fusion-demo/internal/domain/services"
	"fusion-demo/internal/domain/valueobjects"
	"fusion-demo/internal/infrastructure/external"
	inframemory "fusion-demo/internal/infrastructure/repositories"
	infraservices "fusion-demo/internal/infrastructure/services"
)

const cliSession entities.SessionID = "cli"

type options struct {
	image1 string
	image2 string
	action string
	out    string
}

func main() {
	opts := options{}
	flag.StringVar(&opts.image1, "image1", "", "1人目の画像ファイル")
	flag.StringVar(&opts.image2, "image2", "", "2人目の画像ファイル")
	flag.StringVar(&opts.action, "action", valueobjects.DefaultAction().String(), "動作 (shaking hands | hugging each other | saluting each other)")
	flag.StringVar(&opts.out, "out", "", "出力先。省略時は fusion-<時刻>.<拡張子>")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("FUSION_CONFIG"))
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	clientPool := infraservices.NewGenAIClientPool(cfg.GeminiAPIKey)
	defer clientPool.Close()

	path, err := run(context.Background(), cfg, external.NewFusionAIService(clientPool), opts)
	if err != nil {
		slog.Debug("fusion failed", "error", err)
		fmt.Fprintln(os.Stderr, entities.UserMessage(err))
		os.Exit(1)
	}
	fmt.Println(path)
}

// run は画面と同じユースケースを通して1回合成し、結果を書き出したパスを返す
func run(ctx context.Context, cfg *config.Config, ai repositories.FusionAIService, opts options) (string, error) {
	sessions := inframemory.NewMemorySessionRepository()
	fusion := usecases.NewFusionUseCase(sessions, domainservices.NewFusionDomainService(ai, cfg.Model))
	intake := usecases.NewIntakeUseCase(sessions, cfg.MaxUploadBytes())

	for slot, path := range map[valueobjects.Slot]string{valueobjects.Slot1: opts.image1, valueobjects.Slot2: opts.image2} {
		if path == "" {
			continue
		}
		if err := uploadFile(ctx, intake, slot, path); err != nil {
			return "", err
		}
	}

	if _, err := fusion.SelectAction(ctx, cliSession, opts.action); err != nil {
		return "", entities.NewInputError(err.Error(), err)
	}

	if _, err := fusion.Dispatch(ctx, cliSession); err != nil {
		return "", err
	}

	payload, err := fusion.Result(ctx, cliSession)
	if err != nil {
		return "", err
	}
	data, err := payload.Bytes()
	if err != nil {
		return "", err
	}

	out := opts.out
	if out == "" {
		out = fmt.Sprintf("fusion-%s%s", time.Now().Format("20060102-150405"), extensionFor(payload.MimeType()))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

func uploadFile(ctx context.Context, intake *usecases.IntakeUseCase, slot valueobjects.Slot, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return entities.NewReadError(err)
	}
	defer f.Close()

	if _, err := intake.Upload(ctx, usecases.IntakeInput{
		SessionID: cliSession,
		Slot:      slot,
		File:      f,
		MimeType:  mimeTypeFor(path),
	}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// 拡張子で判断できなければ空文字を返し、中身からの推定に任せる
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
