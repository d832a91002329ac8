package service

import (
	"context"
	"errors"

	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
)

// LocalGateway 같은 프로세스의 StoreService로 위저드 제출을 처리한다.
// 업무 오류는 실패 응답으로, 인프라 오류는 error로 돌려준다.
type LocalGateway struct {
	stores  StoreService
	ownerID uint
}

func NewLocalGateway(stores StoreService, ownerID uint) *LocalGateway {
	return &LocalGateway{stores: stores, ownerID: ownerID}
}

func (g *LocalGateway) CreateStore(ctx context.Context, req wizard.SubmissionRequest) (wizard.SubmissionResult, error) {
	store, err := g.stores.RegisterStore(ctx, g.ownerID, req)
	if err != nil {
		var verr *RegistrationValidationError
		switch {
		case errors.As(err, &verr),
			errors.Is(err, ErrDuplicateStoreName),
			errors.Is(err, ErrRegistrationInProgress):
			return wizard.SubmissionResult{Success: false, Error: err.Error()}, nil
		}
		return wizard.SubmissionResult{}, err
	}
	return wizard.SubmissionResult{Success: true, StoreID: store.PublicID}, nil
}
