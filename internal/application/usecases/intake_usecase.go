package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/repositories"
	"fusion-demo/internal/domain/valueobjects"
	"fusion-demo/internal/metrics"
)

const DefaultMaxImageBytes = 10 * 1024 * 1024 // 10MB

type IntakeUseCase struct {
	sessionRepo   repositories.SessionRepository
	maxImageBytes int64
}

func NewIntakeUseCase(sessionRepo repositories.SessionRepository, maxImageBytes int64) *IntakeUseCase {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &IntakeUseCase{
		sessionRepo:   sessionRepo,
		maxImageBytes: maxImageBytes,
	}
}

type IntakeInput struct {
	SessionID entities.SessionID
	Slot      valueobjects.Slot
	File      io.Reader
	// アップロード時に宣言されたContent-Type。空なら中身から推定する
	MimeType string
}

// Upload reads one file into a slot. A failed read leaves the slot's previous
// payload, the other slot, and the outcome untouched.
func (uc *IntakeUseCase) Upload(ctx context.Context, input IntakeInput) (*SessionOutput, error) {
	if !input.Slot.Valid() {
		return nil, fmt.Errorf("invalid slot: %d", input.Slot)
	}

	payload, err := uc.readPayload(input)
	if err != nil {
		slog.Warn("image intake failed", "session", input.SessionID, "slot", input.Slot, "error", err)
		metrics.RecordImageUpload(input.Slot.String(), false)

		snapshot, uerr := uc.sessionRepo.Update(ctx, input.SessionID, func(s *entities.Session) error {
			s.SetSlotError(input.Slot, entities.MessageReadFailed)
			return nil
		})
		if uerr != nil {
			return nil, fmt.Errorf("failed to record slot error: %w", uerr)
		}
		return newSessionOutput(snapshot), entities.NewReadError(err)
	}

	if info, ierr := payload.Inspect(); ierr == nil {
		slog.Info("image intake", "session", input.SessionID, "slot", input.Slot,
			"mimeType", payload.MimeType(), "format", info.Format, "width", info.Width, "height", info.Height)
	} else {
		// 形式の判定はピッカー側の責務なので、ここでは拒否しない
		slog.Info("image intake", "session", input.SessionID, "slot", input.Slot,
			"mimeType", payload.MimeType(), "inspectError", ierr)
	}

	snapshot, err := uc.sessionRepo.Update(ctx, input.SessionID, func(s *entities.Session) error {
		s.SetImage(input.Slot, payload)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	metrics.RecordImageUpload(input.Slot.String(), true)
	return newSessionOutput(snapshot), nil
}

func (uc *IntakeUseCase) readPayload(input IntakeInput) (*valueobjects.ImagePayload, error) {
	if input.File == nil {
		return nil, fmt.Errorf("no file provided")
	}

	data, err := io.ReadAll(io.LimitReader(input.File, uc.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > uc.maxImageBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", uc.maxImageBytes)
	}

	mimeType := input.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return valueobjects.NewImagePayloadFromBytes(data, mimeType)
}
