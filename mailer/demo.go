package mailer

import (
	"embed"
	"fmt"
	"time"

	"github.com/aymerick/raymond"
)

//go:embed templates/*.hbs
var templateFS embed.FS

var (
	demoHTML = mustParse("templates/demo_request.html.hbs")
	demoText = mustParse("templates/demo_request.txt.hbs")
)

func mustParse(name string) *raymond.Template {
	b, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return raymond.MustParse(string(b))
}

var kst = time.FixedZone("KST", 9*60*60)

// DemoRequest 는 데모 신청 알림 메일에 들어가는 값이다.
type DemoRequest struct {
	RequestID    string
	Name         string
	HospitalName string
	Email        string
	Phone        string
	Message      string
	SubmittedAt  time.Time
}

// DemoRequestMessage 는 운영팀에게 보낼 데모 신청 알림 메일을 만든다.
// 회신은 신청자에게 바로 가도록 Reply-To 를 신청자 주소로 둔다.
func DemoRequestMessage(to string, req DemoRequest) (Message, error) {
	ctx := map[string]any{
		"requestId":    req.RequestID,
		"name":         req.Name,
		"hospitalName": req.HospitalName,
		"email":        req.Email,
		"phone":        req.Phone,
		"message":      req.Message,
		"submittedAt":  req.SubmittedAt.In(kst).Format("2006-01-02 15:04 MST"),
	}

	html, err := demoHTML.Exec(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("render demo html: %w", err)
	}
	text, err := demoText.Exec(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("render demo text: %w", err)
	}

	return Message{
		To:      to,
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("[데모 신청] %s - %s", req.HospitalName, req.Name),
		Text:    text,
		HTML:    html,
	}, nil
}
