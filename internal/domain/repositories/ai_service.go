package repositories

import (
	"context"

	"fusion-demo/internal/domain/entities"
)

// 画像合成（Gemini画像モデル）サービス
type FusionAIService interface {
	FuseImages(ctx context.Context, request *entities.FusionRequest) (*entities.FusionResult, error)

	// Ready はネットワークに出ずに認証情報の有無だけを確認する
	Ready() error
}
