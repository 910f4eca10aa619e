package entities

import (
	"fmt"
	"time"

	"fusion-demo/internal/domain/valueobjects"
)

const DefaultFusionModel = "gemini-2.5-flash-image-preview"

type FusionRequestID string

// 画像合成リクエスト
type FusionRequest struct {
	id        FusionRequestID
	model     string
	image1    *valueobjects.ImagePayload
	image2    *valueobjects.ImagePayload
	action    valueobjects.ActionChoice
	prompt    string
	createdAt time.Time
}

func NewFusionRequest(
	model string,
	image1 *valueobjects.ImagePayload,
	image2 *valueobjects.ImagePayload,
	action valueobjects.ActionChoice,
) (*FusionRequest, error) {
	if image1 == nil || image2 == nil || action.IsZero() {
		return nil, ErrMissingImages
	}

	if model == "" {
		// デフォルトモデル
		model = DefaultFusionModel
	}

	return &FusionRequest{
		id:        FusionRequestID(fmt.Sprintf("req_%d", time.Now().UnixNano())),
		model:     model,
		image1:    image1,
		image2:    image2,
		action:    action,
		prompt:    BuildFusionPrompt(action),
		createdAt: time.Now(),
	}, nil
}

func (r *FusionRequest) ID() FusionRequestID {
	return r.id
}

func (r *FusionRequest) Model() string {
	return r.model
}

func (r *FusionRequest) Image1() *valueobjects.ImagePayload {
	return r.image1
}

func (r *FusionRequest) Image2() *valueobjects.ImagePayload {
	return r.image2
}

func (r *FusionRequest) Action() valueobjects.ActionChoice {
	return r.action
}

func (r *FusionRequest) Prompt() string {
	return r.prompt
}

func (r *FusionRequest) CreatedAt() time.Time {
	return r.createdAt
}

// BuildFusionPrompt embeds the action verbatim; nothing is escaped.
func BuildFusionPrompt(action valueobjects.ActionChoice) string {
	return fmt.Sprintf(
		"Create a photorealistic image of the person from the first image and the person from the second image %s. "+
			"Place them together against a neutral background. "+
			"Make the interaction look natural and believable.",
		action,
	)
}
