package services

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/repositories"
)

// GenAI Client Pool実装
// クライアントは最初のリクエスト時に生成する。APIキー未設定でも起動は止めない。
type genAIClientPool struct {
	apiKey string
	client *genai.Client
	mutex  sync.RWMutex
}

// 新しいGenAIクライアントプールを作成
func NewGenAIClientPool(apiKey string) repositories.GenAIClientPool {
	return &genAIClientPool{
		apiKey: apiKey,
	}
}

func (p *genAIClientPool) HasCredential() bool {
	return p.apiKey != ""
}

func (p *genAIClientPool) GetGenAIClient(ctx context.Context) (*genai.Client, error) {
	if !p.HasCredential() {
		return nil, entities.ErrMissingCredential
	}

	p.mutex.RLock()
	if p.client != nil {
		defer p.mutex.RUnlock()
		return p.client, nil
	}
	p.mutex.RUnlock()

	p.mutex.Lock()
	defer p.mutex.Unlock()

	// ダブルチェックロッキング
	if p.client != nil {
		return p.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	p.client = client
	return p.client, nil
}

func (p *genAIClientPool) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	// GenAI Clientはリソースクリーンアップ不要
	p.client = nil
	return nil
}
