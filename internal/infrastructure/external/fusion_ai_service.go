package external

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/repositories"
	"fusion-demo/internal/domain/valueobjects"
)

// contentGenerator は genai.Models のうち使うメソッドだけを切り出したもの
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type FusionAIService struct {
	clientPool repositories.GenAIClientPool
	generator  contentGenerator
}

func NewFusionAIService(clientPool repositories.GenAIClientPool) repositories.FusionAIService {
	return &FusionAIService{
		clientPool: clientPool,
	}
}

func (s *FusionAIService) Ready() error {
	if s.generator != nil {
		return nil
	}
	if !s.clientPool.HasCredential() {
		return entities.ErrMissingCredential
	}
	return nil
}

func (s *FusionAIService) models(ctx context.Context) (contentGenerator, error) {
	if s.generator != nil {
		return s.generator, nil
	}
	client, err := s.clientPool.GetGenAIClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func (s *FusionAIService) FuseImages(ctx context.Context, request *entities.FusionRequest) (*entities.FusionResult, error) {
	slog.Info("FuseImages", "model", request.Model(), "action", request.Action(), "requestID", request.ID())

	generator, err := s.models(ctx)
	if err != nil {
		return nil, err
	}

	// 順序は 画像1 → 画像2 → プロンプト
	parts := make([]*genai.Part, 0, 3)
	for _, image := range []*valueobjects.ImagePayload{request.Image1(), request.Image2()} {
		data, err := image.Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to decode image payload: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, image.MimeType()))
	}
	parts = append(parts, genai.NewPartFromText(request.Prompt()))

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	// gemini-2.5-flash-image-preview は複数候補(CandidateCount)を指定できないので出力モダリティのみ指定する
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}

	resp, err := generator.GenerateContent(ctx, request.Model(), contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	image, err := firstInlineImage(resp)
	if err != nil {
		slog.Warn("No image data in response", "requestID", request.ID(), "candidatesCount", candidateCount(resp))
		return nil, err
	}

	slog.Info("Gemini API response", "requestID", request.ID(), "candidatesCount", candidateCount(resp), "mimeType", image.MimeType())

	return entities.NewFusionResult(request.ID(), image), nil
}

// firstInlineImage scans candidates, then their parts, in order. The first part
// carrying inline data wins and everything after it is ignored.
func firstInlineImage(resp *genai.GenerateContentResponse) (*valueobjects.ImagePayload, error) {
	if resp == nil {
		return nil, entities.ErrNoImageReturned
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			payload, err := valueobjects.NewImagePayload(
				base64.StdEncoding.EncodeToString(part.InlineData.Data),
				part.InlineData.MIMEType,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create image payload: %w", err)
			}
			return payload, nil
		}
	}

	return nil, entities.ErrNoImageReturned
}

func candidateCount(resp *genai.GenerateContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Candidates)
}
