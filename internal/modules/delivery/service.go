// README: Delivery submission: duplicate minute check then persistence.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"freightdesk/internal/types"
)

var (
	ErrNotFound   = errors.New("delivery not found")
	ErrBadRequest = errors.New("bad request")
)

type Repository interface {
	MinuteIndex
	Get(ctx context.Context, id types.ID) (*Record, error)
	Save(ctx context.Context, r *Record) error
}

type Service struct {
	repo   Repository
	guard  *Guard
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, guard: NewGuard(repo), logger: logger}
}

type SubmitCommand struct {
	Record           Record
	ConfirmDuplicate bool
}

// SubmitResult reports either the saved record or that the minute number is already
// used by another record of the same client and the caller has to confirm.
type SubmitResult struct {
	NeedsConfirmation bool
	Record            *Record
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Record, error) {
	if id.Empty() {
		return nil, ErrBadRequest
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) MinuteExists(ctx context.Context, minute string, clientID, excludeID types.ID) (bool, error) {
	return s.guard.Exists(ctx, minute, clientID, excludeID)
}

// Submit persists the record with its freight exactly as given, rounded to cents.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	r := cmd.Record.Clone()
	r.MinuteNumber = strings.TrimSpace(r.MinuteNumber)
	if r.MinuteNumber == "" || r.ClientID.Empty() {
		return SubmitResult{}, fmt.Errorf("%w: minute number and client are required", ErrBadRequest)
	}
	if r.TotalFreight.IsNegative() {
		return SubmitResult{}, fmt.Errorf("%w: negative freight", ErrBadRequest)
	}
	r.TotalFreight = types.Cents(r.TotalFreight)

	if !cmd.ConfirmDuplicate {
		dup, err := s.guard.Exists(ctx, r.MinuteNumber, r.ClientID, r.ID)
		if err != nil {
			return SubmitResult{}, err
		}
		if dup {
			return SubmitResult{NeedsConfirmation: true}, nil
		}
	}

	if err := s.repo.Save(ctx, &r); err != nil {
		return SubmitResult{}, err
	}
	s.logger.Info("delivery saved",
		zap.String("delivery_id", r.ID.String()),
		zap.String("client_id", r.ClientID.String()),
		zap.String("minute_number", r.MinuteNumber),
		zap.String("total_freight", r.TotalFreight.StringFixed(2)),
		zap.Bool("duplicate_confirmed", cmd.ConfirmDuplicate),
	)
	return SubmitResult{Record: &r}, nil
}
