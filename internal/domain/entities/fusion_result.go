package entities

import "fusion-demo/internal/domain/valueobjects"

type FusionResult struct {
	requestID FusionRequestID
	image     *valueobjects.ImagePayload
}

func NewFusionResult(requestID FusionRequestID, image *valueobjects.ImagePayload) *FusionResult {
	return &FusionResult{
		requestID: requestID,
		image:     image,
	}
}

func (r *FusionResult) RequestID() FusionRequestID {
	return r.requestID
}

func (r *FusionResult) Image() *valueobjects.ImagePayload {
	return r.image
}

func (r *FusionResult) HasImage() bool {
	return r != nil && r.image != nil
}
