package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ikkim/restaurant-ops-backend/internal/app/model"
	"github.com/ikkim/restaurant-ops-backend/internal/app/repository"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"github.com/ikkim/restaurant-ops-backend/pkg/redis"
	"github.com/ikkim/restaurant-ops-backend/pkg/secure"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrStoreNotFound          = errors.New("Store not found")
	ErrDuplicateStoreName     = errors.New("A store with this name already exists")
	ErrRegistrationInProgress = errors.New("This registration is already being processed")
)

// 같은 키의 요청이 처리되는 동안 유지되는 선점 시간
const registrationClaimTTL = time.Minute

// RegistrationValidationError 필수 항목 누락. 키는 "section.field" 형식.
type RegistrationValidationError struct {
	Fields map[string]string
}

func (e *RegistrationValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return "Some required fields are missing"
	}
	return e.Fields[keys[0]]
}

type StoreService interface {
	RegisterStore(ctx context.Context, ownerID uint, req wizard.SubmissionRequest) (*model.Store, error)
	GetStore(ownerID uint, publicID string) (*model.Store, error)
	ListStores(ownerID uint) ([]model.Store, error)
}

type storeService struct {
	db        *gorm.DB
	storeRepo repository.StoreRepository
	claims    redis.ClaimStore
	sealer    *secure.Sealer
	steps     []wizard.Descriptor
}

func NewStoreService(db *gorm.DB, storeRepo repository.StoreRepository, claims redis.ClaimStore, sealer *secure.Sealer) StoreService {
	return &storeService{
		db:        db,
		storeRepo: storeRepo,
		claims:    claims,
		sealer:    sealer,
		steps:     wizard.DefaultSteps(),
	}
}

// RegisterStore 위저드 결과를 매장과 연동 설정으로 저장한다.
// 같은 idempotency key로 다시 호출되면 이미 만든 매장을 그대로 돌려준다.
func (s *storeService) RegisterStore(ctx context.Context, ownerID uint, req wizard.SubmissionRequest) (*model.Store, error) {
	log := logger.WithContext(map[string]interface{}{
		"owner_id":        ownerID,
		"idempotency_key": req.IdempotencyKey,
	})
	log.Info("Registering store", map[string]interface{}{
		"name": req.BasicInfo.Name,
	})

	if failed := wizard.ValidateForm(s.steps, wizard.FormFromRequest(req)); len(failed) > 0 {
		fields := map[string]string{}
		for stepID, errs := range failed {
			section := s.sectionOf(stepID)
			for field, msg := range errs {
				fields[string(section)+"."+field] = msg
			}
		}
		log.Warn("Store registration payload failed validation", map[string]interface{}{
			"fields": fields,
		})
		return nil, &RegistrationValidationError{Fields: fields}
	}

	repo := s.storeRepo.WithContext(ctx)

	if req.IdempotencyKey != "" {
		if existing, err := s.findReplay(repo, ownerID, req.IdempotencyKey); err != nil || existing != nil {
			return existing, err
		}

		claimKey := redis.ClaimKey("store", fmt.Sprintf("%d:%s", ownerID, req.IdempotencyKey))
		claimed, err := s.claims.Claim(ctx, claimKey, registrationClaimTTL)
		if err != nil {
			return nil, err
		}
		if !claimed {
			log.Warn("Store registration already in flight")
			return nil, ErrRegistrationInProgress
		}
		defer func() {
			if err := s.claims.Release(context.Background(), claimKey); err != nil {
				log.Error("Failed to release idempotency claim", err)
			}
		}()

		// 선점 직전에 다른 요청이 끝났을 수 있다
		if existing, err := s.findReplay(repo, ownerID, req.IdempotencyKey); err != nil || existing != nil {
			return existing, err
		}
	}

	exists, err := repo.ExistsByOwnerAndName(ownerID, req.BasicInfo.Name)
	if err != nil {
		log.Error("Failed to check duplicate store name", err)
		return nil, err
	}
	if exists {
		log.Warn("Duplicate store name", map[string]interface{}{
			"name": req.BasicInfo.Name,
		})
		return nil, ErrDuplicateStoreName
	}

	store, err := s.buildStore(ownerID, req)
	if err != nil {
		log.Error("Failed to seal store credentials", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction for RegisterStore", tx.Error)
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Error("Panic in RegisterStore, transaction rolled back", fmt.Errorf("%v", r))
			panic(r)
		}
	}()

	if err := repo.WithTx(tx).Create(store); err != nil {
		tx.Rollback()
		if req.IdempotencyKey != "" && isUniqueViolation(err, "idempotency_key") {
			// 다른 인스턴스가 같은 키로 먼저 커밋했다
			if existing, findErr := s.findReplay(s.storeRepo, ownerID, req.IdempotencyKey); findErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit store registration", err)
		return nil, err
	}

	log.Info("Store registered", map[string]interface{}{
		"store_id": store.PublicID,
		"slug":     store.Slug,
	})
	return store, nil
}

func (s *storeService) findReplay(repo repository.StoreRepository, ownerID uint, key string) (*model.Store, error) {
	existing, err := repo.FindByIdempotencyKey(ownerID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Replaying store registration", map[string]interface{}{
		"store_id":        existing.PublicID,
		"idempotency_key": key,
	})
	return existing, nil
}

func (s *storeService) sectionOf(id wizard.StepID) wizard.SectionKey {
	for _, d := range s.steps {
		if d.ID == id {
			return d.Section
		}
	}
	return wizard.SectionKey(id)
}

func (s *storeService) buildStore(ownerID uint, req wizard.SubmissionRequest) (*model.Store, error) {
	b, l, g, a := req.BasicInfo, req.LineSetup, req.GoogleSetup, req.AISetup

	closed := pq.StringArray{}
	for _, d := range b.OperatingHours.ClosedDays() {
		closed = append(closed, string(d))
	}

	store := &model.Store{
		OwnerID:        ownerID,
		Name:           strings.TrimSpace(b.Name),
		PhoneNumber:    strings.TrimSpace(b.Phone),
		Address:        strings.TrimSpace(b.Address),
		Concept:        b.Concept,
		OperatingHours: b.OperatingHours,
		ClosedDays:     closed,
		PlanTier:       string(b.Plan),
		SetupComplete:  true,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		store.IdempotencyKey = &key
	}

	var err error
	line := &model.LineChannel{ChannelID: l.ChannelID, WebhookURL: l.WebhookURL, RichMenuEnabled: l.RichMenuEnabled}
	if line.SealedChannelSecret, err = s.sealer.Seal(l.ChannelSecret); err != nil {
		return nil, err
	}
	if line.SealedAccessToken, err = s.sealer.Seal(l.AccessToken); err != nil {
		return nil, err
	}
	store.LineChannel = line

	calendar := &model.CalendarSetting{
		CalendarID:          g.CalendarID,
		Timezone:            g.Timezone,
		ServiceAccountEmail: g.ServiceAccountEmail,
		AutoCreateEvents:    g.AutoCreateEvents,
		SyncExistingEvents:  g.SyncExistingEvents,
	}
	if calendar.SealedPrivateKey, err = s.sealer.Seal(g.PrivateKey); err != nil {
		return nil, err
	}
	store.CalendarSetting = calendar

	assistant := &model.AIAssistant{
		Personality:        string(a.Personality),
		Tone:               string(a.Tone),
		Language:           a.Language,
		CustomInstructions: a.CustomInstructions,
		UseCommonKey:       a.UseCommonKey,
		AutoReply:          a.AutoReply,
		Learning:           a.Learning,
	}
	if !a.UseCommonKey {
		if assistant.SealedCustomAPIKey, err = s.sealer.Seal(a.CustomAPIKey); err != nil {
			return nil, err
		}
	}
	store.AIAssistant = assistant

	return store, nil
}

func (s *storeService) GetStore(ownerID uint, publicID string) (*model.Store, error) {
	store, err := s.storeRepo.FindByPublicID(publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		logger.Error("Failed to fetch store", err, map[string]interface{}{
			"store_id": publicID,
		})
		return nil, err
	}
	// 다른 가맹점의 매장은 존재 여부도 노출하지 않는다
	if store.OwnerID != ownerID {
		return nil, ErrStoreNotFound
	}
	return store, nil
}

func (s *storeService) ListStores(ownerID uint) ([]model.Store, error) {
	stores, err := s.storeRepo.FindByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	logger.Debug("Stores fetched by owner", map[string]interface{}{
		"owner_id": ownerID,
		"count":    len(stores),
	})
	return stores, nil
}

func isUniqueViolation(err error, column string) bool {
	msg := strings.ToLower(err.Error())
	return (strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")) &&
		strings.Contains(msg, column)
}
