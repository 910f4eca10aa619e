package repositories

import (
	"context"

	"google.golang.org/genai"
)

// GenAI Client Pool
// APIキーで認証する標準GenAIクライアントを1つだけ保持する
type GenAIClientPool interface {
	// 標準GenAI用クライアントを取得。APIキー未設定なら entities.ErrMissingCredential
	GetGenAIClient(ctx context.Context) (*genai.Client, error)

	// APIキーが設定されているか
	HasCredential() bool

	// リソースのクリーンアップ
	Close() error
}
