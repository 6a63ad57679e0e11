package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"careconnect/cmd/api/dto"
	"careconnect/eventbus"
	"careconnect/events"
	"careconnect/internal/logger"
	"careconnect/internal/trace"
	"careconnect/mailer"
	"careconnect/models"
)

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^[\d\-+\s()]+$`)
)

const (
	DemoSuccessMessage    = "데모 신청이 완료되었습니다. 담당자가 곧 연락드리겠습니다."
	DemoValidationMessage = "입력값을 확인해주세요."
	DemoFailureMessage    = "데모 신청 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// ValidationError 는 필드별 한국어 메시지 묶음이다.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid demo request: %d field(s)", len(e.Fields))
}

// ValidateDemoRequest 는 필수값과 이메일/연락처 형식을 확인한다. 문제가 없으면 nil.
func ValidateDemoRequest(in dto.DemoRequestDTO) *ValidationError {
	errs := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "이름을 입력해주세요."
	}
	if strings.TrimSpace(in.HospitalName) == "" {
		errs["hospitalName"] = "병원명을 입력해주세요."
	}
	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "이메일을 입력해주세요."
	} else if !emailPattern.MatchString(in.Email) {
		errs["email"] = "올바른 이메일 형식을 입력해주세요."
	}
	if strings.TrimSpace(in.Phone) == "" {
		errs["phone"] = "연락처를 입력해주세요."
	} else if !phonePattern.MatchString(in.Phone) {
		errs["phone"] = "올바른 연락처 형식을 입력해주세요."
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// DemoStore 는 데모 신청 저장소다. (repositories.DemoRequestRepository)
type DemoStore interface {
	Insert(ctx context.Context, req *models.DemoRequest) (*mongo.InsertOneResult, error)
	UpdateDelivery(ctx context.Context, requestID string, status models.DeliveryStatus, messageID, lastError string) error
}

// Publisher 는 이벤트 발행기다. (eventbus.EventBus)
type Publisher interface {
	Publish(ctx context.Context, topic string, event eventbus.Event) error
}

// DemoService 는 데모 신청을 저장하고 운영팀에 알린다.
// publisher 가 있으면 notifier 워커로 넘기고, 없으면 mailer 로 바로 보낸다.
type DemoService struct {
	store     DemoStore
	publisher Publisher
	sender    mailer.Sender
	notifyTo  string
}

func NewDemoService(store DemoStore, publisher Publisher, sender mailer.Sender, notifyTo string) *DemoService {
	return &DemoService{store: store, publisher: publisher, sender: sender, notifyTo: notifyTo}
}

// Submit 은 검증 실패 시 *ValidationError 를 반환한다.
func (s *DemoService) Submit(ctx context.Context, in dto.DemoRequestDTO, clientIP string) error {
	if verr := ValidateDemoRequest(in); verr != nil {
		return verr
	}

	req := &models.DemoRequest{
		RequestID:    trace.GenerateID(),
		Name:         strings.TrimSpace(in.Name),
		HospitalName: strings.TrimSpace(in.HospitalName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Message:      strings.TrimSpace(in.Message),
		ClientIP:     clientIP,
		Delivery:     models.DeliveryPending,
		CreatedAt:    time.Now(),
	}
	// 발행 뒤에 상태를 쓰면 notifier 가 먼저 기록한 sent 를 덮어쓸 수 있으므로 queued 로 저장한 뒤 발행한다.
	if s.publisher != nil {
		req.Delivery = models.DeliveryQueued
	}

	if s.store != nil {
		if _, err := s.store.Insert(ctx, req); err != nil {
			return fmt.Errorf("save demo request: %w", err)
		}
	}

	if s.publisher != nil {
		return s.enqueue(ctx, req)
	}
	return s.sendNow(ctx, req)
}

func (s *DemoService) enqueue(ctx context.Context, req *models.DemoRequest) error {
	evt := events.DemoRequestedEvent{
		BaseEvent:    events.NewBaseEvent(events.DemoRequested, "api"),
		RequestID:    req.RequestID,
		Name:         req.Name,
		HospitalName: req.HospitalName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
	}
	busEvt, err := eventbus.NewJSONEvent(req.RequestID, string(events.DemoRequested), evt, 0)
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, eventbus.TopicSiteEvents.Base(), busEvt); err != nil {
		// 발행에 실패하면 바로 보내 본다.
		logger.WarnWithFields("demo request publish failed, sending directly", logger.Fields{
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
		return s.sendNow(ctx, req)
	}
	return nil
}

func (s *DemoService) sendNow(ctx context.Context, req *models.DemoRequest) error {
	if s.sender == nil {
		return errors.New("no demo request notifier configured")
	}
	msg, err := mailer.DemoRequestMessage(s.notifyTo, mailer.DemoRequest{
		RequestID:    req.RequestID,
		Name:         req.Name,
		HospitalName: req.HospitalName,
		Email:        req.Email,
		Phone:        req.Phone,
		Message:      req.Message,
		SubmittedAt:  req.CreatedAt,
	})
	if err != nil {
		return err
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.markDelivery(ctx, req.RequestID, models.DeliveryFailed, "", err.Error())
		return fmt.Errorf("send demo request mail: %w", err)
	}
	s.markDelivery(ctx, req.RequestID, models.DeliverySent, id, "")
	return nil
}

func (s *DemoService) markDelivery(ctx context.Context, requestID string, status models.DeliveryStatus, messageID, lastError string) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateDelivery(ctx, requestID, status, messageID, lastError); err != nil {
		logger.WarnWithFields("demo delivery status update failed", logger.Fields{
			"request_id": requestID,
			"status":     string(status),
			"error":      err.Error(),
		})
	}
}
