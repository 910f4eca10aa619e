package services

import (
	"context"
	"errors"
	"log/slog"

	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/repositories"
	"fusion-demo/internal/domain/valueobjects"
)

type FusionDomainService struct {
	aiService repositories.FusionAIService
	model     string
}

func NewFusionDomainService(aiService repositories.FusionAIService, model string) *FusionDomainService {
	return &FusionDomainService{
		aiService: aiService,
		model:     model,
	}
}

// PrepareRequest checks every precondition of a dispatch. It never touches the network.
func (s *FusionDomainService) PrepareRequest(
	image1 *valueobjects.ImagePayload,
	image2 *valueobjects.ImagePayload,
	action valueobjects.ActionChoice,
) (*entities.FusionRequest, error) {
	request, err := entities.NewFusionRequest(s.model, image1, image2, action)
	if err != nil {
		return nil, entities.NewInputError(entities.MessageMissingInputs, err)
	}

	if err := s.aiService.Ready(); err != nil {
		return nil, entities.NewInputError(entities.MessageMissingCredential, err)
	}

	return request, nil
}

// Fuse issues exactly one generation call. There is no retry.
func (s *FusionDomainService) Fuse(ctx context.Context, request *entities.FusionRequest) (*entities.FusionResult, error) {
	result, err := s.aiService.FuseImages(ctx, request)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrNoImageReturned):
			return nil, entities.NewEmptyResultError()
		case errors.Is(err, entities.ErrMissingCredential):
			return nil, entities.NewInputError(entities.MessageMissingCredential, err)
		}
		slog.Warn("fusion generation failed", "requestID", request.ID(), "error", err)
		return nil, entities.NewServiceError(err)
	}

	if !result.HasImage() {
		return nil, entities.NewEmptyResultError()
	}

	return result, nil
}
