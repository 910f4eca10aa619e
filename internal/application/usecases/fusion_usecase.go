package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fusion-demo/internal/domain/entities"
	"fusion-demo/internal/domain/repositories"
	"fusion-demo/internal/domain/services"
	"fusion-demo/internal/domain/valueobjects"
	"fusion-demo/internal/metrics"
)

var (
	ErrNoResult = errors.New("no fusion result available")

	errGenerationAborted = errors.New("generation aborted unexpectedly")
)

type FusionUseCase struct {
	sessionRepo   repositories.SessionRepository
	domainService *services.FusionDomainService
}

func NewFusionUseCase(
	sessionRepo repositories.SessionRepository,
	domainService *services.FusionDomainService,
) *FusionUseCase {
	return &FusionUseCase{
		sessionRepo:   sessionRepo,
		domainService: domainService,
	}
}

func (uc *FusionUseCase) State(ctx context.Context, id entities.SessionID) (*SessionOutput, error) {
	session, err := uc.sessionRepo.GetOrCreate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return newSessionOutput(session), nil
}

func (uc *FusionUseCase) SelectAction(ctx context.Context, id entities.SessionID, value string) (*SessionOutput, error) {
	action, err := valueobjects.ParseActionChoice(value)
	if err != nil {
		return nil, err
	}

	snapshot, err := uc.sessionRepo.Update(ctx, id, func(s *entities.Session) error {
		s.SelectAction(action)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select action: %w", err)
	}
	return newSessionOutput(snapshot), nil
}

// Reset clears both slots, the action and the outcome. Rejected while a request is in flight.
func (uc *FusionUseCase) Reset(ctx context.Context, id entities.SessionID) (*SessionOutput, error) {
	snapshot, err := uc.sessionRepo.Update(ctx, id, func(s *entities.Session) error {
		if s.Outcome().IsLoading() {
			return entities.ErrDispatchInProgress
		}
		s.Reset()
		return nil
	})
	return newSessionOutput(snapshot), err
}

// Result returns the composite image of a Success outcome.
func (uc *FusionUseCase) Result(ctx context.Context, id entities.SessionID) (*valueobjects.ImagePayload, error) {
	session, err := uc.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dataURL, ok := session.Outcome().ImageDataURL()
	if !ok {
		return nil, ErrNoResult
	}
	return valueobjects.ParseDataURL(dataURL)
}

// Dispatch runs one fusion request for the session and returns the settled snapshot.
//
// Preconditions are checked before Loading is entered, so a failed check goes
// straight to Failure without a network call. Once Loading is claimed the call
// runs to completion even if ctx is cancelled, and Loading is always left.
func (uc *FusionUseCase) Dispatch(ctx context.Context, id entities.SessionID) (*SessionOutput, error) {
	var request *entities.FusionRequest

	snapshot, err := uc.sessionRepo.Update(ctx, id, func(s *entities.Session) error {
		if s.Outcome().IsLoading() {
			return entities.ErrDispatchInProgress
		}

		req, err := uc.domainService.PrepareRequest(
			s.Image(valueobjects.Slot1),
			s.Image(valueobjects.Slot2),
			s.Action(),
		)
		if err != nil {
			s.SetOutcome(valueobjects.FailureOutcome(entities.UserMessage(err)))
			return err
		}

		// 前回の Success/Failure はここで消える
		s.SetOutcome(valueobjects.LoadingOutcome())
		request = req
		return nil
	})
	if errors.Is(err, entities.ErrDispatchInProgress) {
		metrics.RecordDispatchRejected()
		return newSessionOutput(snapshot), err
	}
	if err != nil {
		slog.Info("fusion dispatch rejected by preconditions", "session", id, "error", err)
		metrics.RecordFusionOutcome(valueobjects.OutcomeFailure.String(), string(entities.KindOf(err)))
		return newSessionOutput(snapshot), err
	}

	slog.Info("fusion dispatched", "session", id, "requestID", request.ID(), "action", request.Action())
	return uc.generate(context.WithoutCancel(ctx), id, request)
}

func (uc *FusionUseCase) generate(ctx context.Context, id entities.SessionID, request *entities.FusionRequest) (output *SessionOutput, err error) {
	outcome := valueobjects.FailureOutcome(entities.UserMessage(errGenerationAborted))
	kind := entities.ErrorKindService
	start := time.Now()

	defer func() {
		// 成功・失敗・panic のどの経路でも Loading を抜ける
		snapshot, uerr := uc.sessionRepo.Update(ctx, id, func(s *entities.Session) error {
			s.SetOutcome(outcome)
			return nil
		})
		if uerr != nil {
			slog.Error("failed to settle fusion outcome", "session", id, "error", uerr)
		}
		output = newSessionOutput(snapshot)

		label := outcome.Kind().String()
		metrics.ObserveGenerationDuration(label, time.Since(start))
		if outcome.Kind() == valueobjects.OutcomeSuccess {
			metrics.RecordFusionOutcome(label, "")
		} else {
			metrics.RecordFusionOutcome(label, string(kind))
		}
		slog.Info("fusion settled", "session", id, "requestID", request.ID(), "outcome", label, "elapsed", time.Since(start))
	}()

	result, err := uc.domainService.Fuse(ctx, request)
	if err != nil {
		outcome = valueobjects.FailureOutcome(entities.UserMessage(err))
		kind = entities.KindOf(err)
		return nil, err
	}

	outcome = valueobjects.SuccessOutcome(result.Image().DataURL())
	return nil, nil
}
