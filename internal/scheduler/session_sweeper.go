package scheduler

import (
	"time"

	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultSweepSpec 1분마다 방치된 위저드 세션을 정리한다
const DefaultSweepSpec = "@every 1m"

// Sweeper SweepExpired를 가진 세션 저장소
type Sweeper interface {
	SweepExpired(now time.Time) int
}

// SessionSweeper 방치된 위저드 세션 정리 스케줄러
type SessionSweeper struct {
	cron    *cron.Cron
	spec    string
	sweeper Sweeper
	now     func() time.Time
}

// NewSessionSweeper spec이 비어 있으면 DefaultSweepSpec을 쓴다
func NewSessionSweeper(sweeper Sweeper, spec string) *SessionSweeper {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	return &SessionSweeper{
		cron:    cron.New(),
		spec:    spec,
		sweeper: sweeper,
		now:     time.Now,
	}
}

// Start 스케줄러 시작
func (s *SessionSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for wizard session sweep", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Wizard session sweeper started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce 만료된 세션을 한 번 정리한다
func (s *SessionSweeper) RunOnce() {
	closed := s.sweeper.SweepExpired(s.now())
	if closed > 0 {
		logger.Info("Expired wizard sessions closed", map[string]interface{}{
			"count": closed,
		})
	}
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다.
func (s *SessionSweeper) Stop() {
	logger.Info("Stopping wizard session sweeper...")
	<-s.cron.Stop().Done()
	logger.Info("Wizard session sweeper stopped")
}
