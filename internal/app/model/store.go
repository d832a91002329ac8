package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Store 온보딩 위저드로 등록된 매장
type Store struct {
	ID          uint   `gorm:"primarykey" json:"-"`
	PublicID    string `gorm:"type:varchar(36);uniqueIndex;not null" json:"store_id"` // 외부 노출용 매장 ID
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`                        // 가맹점주 (JWT user_id)
	Name        string `gorm:"not null" json:"name"`                                  // 매장명
	Slug        string `gorm:"uniqueIndex" json:"slug"`                               // URL용 고유 식별자
	PhoneNumber string `gorm:"type:varchar(30)" json:"phone_number"`
	Address     string `gorm:"type:text" json:"address"`
	Concept     string `gorm:"type:text" json:"concept"`

	OperatingHours wizard.OperatingHours `gorm:"serializer:json;type:text" json:"operating_hours"`
	ClosedDays     pq.StringArray        `gorm:"type:text[]" json:"closed_days"` // 정기 휴무 요일
	PlanTier       string                `gorm:"type:varchar(20);default:'standard'" json:"plan_tier"`

	// 같은 키로 재시도된 등록 요청은 이미 만든 매장을 돌려준다
	IdempotencyKey *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	SetupComplete  bool    `gorm:"default:false" json:"setup_complete"`

	LineChannel     *LineChannel     `gorm:"foreignKey:StoreID" json:"line_channel,omitempty"`
	CalendarSetting *CalendarSetting `gorm:"foreignKey:StoreID" json:"calendar_setting,omitempty"`
	AIAssistant     *AIAssistant     `gorm:"foreignKey:StoreID" json:"ai_assistant,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// LineChannel LINE 공식 계정 연동 정보. 시크릿은 봉인된 상태로만 저장한다.
type LineChannel struct {
	ID                  uint      `gorm:"primarykey" json:"-"`
	StoreID             uint      `gorm:"uniqueIndex;not null" json:"-"`
	ChannelID           string    `gorm:"type:varchar(64)" json:"channel_id"`
	SealedChannelSecret string    `gorm:"type:text" json:"-"`
	SealedAccessToken   string    `gorm:"type:text" json:"-"`
	WebhookURL          string    `gorm:"type:text" json:"webhook_url"`
	RichMenuEnabled     bool      `json:"rich_menu_enabled"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (LineChannel) TableName() string {
	return "line_channels"
}

// CalendarSetting Google 캘린더 연동 설정 (선택 단계)
type CalendarSetting struct {
	ID                  uint      `gorm:"primarykey" json:"-"`
	StoreID             uint      `gorm:"uniqueIndex;not null" json:"-"`
	CalendarID          string    `gorm:"type:varchar(255)" json:"calendar_id"`
	Timezone            string    `gorm:"type:varchar(64)" json:"timezone"`
	ServiceAccountEmail string    `gorm:"type:varchar(255)" json:"service_account_email"`
	SealedPrivateKey    string    `gorm:"type:text" json:"-"`
	AutoCreateEvents    bool      `json:"auto_create_events"`
	SyncExistingEvents  bool      `json:"sync_existing_events"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (CalendarSetting) TableName() string {
	return "calendar_settings"
}

// AIAssistant AI 응대 설정
type AIAssistant struct {
	ID                 uint      `gorm:"primarykey" json:"-"`
	StoreID            uint      `gorm:"uniqueIndex;not null" json:"-"`
	Personality        string    `gorm:"type:varchar(20)" json:"personality"`
	Tone               string    `gorm:"type:varchar(20)" json:"tone"`
	Language           string    `gorm:"type:varchar(10)" json:"language"`
	CustomInstructions string    `gorm:"type:text" json:"custom_instructions"`
	UseCommonKey       bool      `gorm:"default:true" json:"use_common_key"`
	SealedCustomAPIKey string    `gorm:"type:text" json:"-"`
	AutoReply          bool      `json:"auto_reply"`
	Learning           bool      `json:"learning"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (AIAssistant) TableName() string {
	return "ai_assistants"
}

// generateSlug 매장명으로 URL용 slug 생성. 비ASCII 문자는 음역한다.
func generateSlug(name string) string {
	if s := slug.Make(name); s != "" {
		return s
	}
	return "store"
}

// BeforeCreate 공개 ID와 slug를 채운다. slug가 겹치면 숫자를 붙인다.
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.PublicID == "" {
		s.PublicID = uuid.New().String()
	}
	if s.Slug != "" {
		return nil
	}

	baseSlug := generateSlug(s.Name)
	candidate := baseSlug
	counter := 1
	for {
		var count int64
		if err := tx.Model(&Store{}).Unscoped().Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d", baseSlug, counter)
	}
	s.Slug = candidate
	return nil
}
