package summarizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"careconnect/config"
)

var ErrQuotaExhausted = errors.New("daily summary quota exhausted")

// QuotaLimiter 는 LLM 호출의 분당/일일 한도를 관리한다.
// 워처 인스턴스가 하나라는 전제의 인메모리 구현이라 재시작하면 카운터가 초기화된다.
type QuotaLimiter struct {
	mu  sync.Mutex
	now func() time.Time

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time
}

// NewQuotaLimiter 는 summary_quota 설정으로 리미터를 만든다. 0 이하 값은 제한 없음이다.
func NewQuotaLimiter(q config.SummaryQuotaConfig) *QuotaLimiter {
	l := &QuotaLimiter{now: time.Now}
	if q.RequestsPerDay > 0 {
		l.dailyLimit = q.RequestsPerDay
	}
	if q.RequestsPerMinute > 0 {
		l.interval = time.Minute / time.Duration(q.RequestsPerMinute)
	}
	return l
}

// WaitAndReserve 는 호출 한 건을 예약한다.
// 일일 한도 소진이면 (false, nil), 컨텍스트 취소면 (false, err).
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := l.now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = l.lastCall.Add(l.interval).Sub(now)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		l.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
