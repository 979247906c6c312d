// Package sender отправляет преподавателям письма о доменных событиях маркетплейса.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/smtp"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// SenderService разбирает события из очереди и отправляет письма.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleEnrollment сообщает преподавателю о записи студента на курс.
// Событие без адреса преподавателя подтверждается без отправки.
func (s *SenderService) HandleEnrollment(body []byte) error {
	const op = "sender.HandleEnrollment"
	var ev models.EnrollmentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if ev.InstructorEmail == "" {
		s.log.Info("instructor has no email, skip", sl.Op(op), slog.String("instructor_id", ev.InstructorID))
		return nil
	}

	subject := fmt.Sprintf("Новый студент на курсе «%s»", ev.CourseName)
	bodyText := fmt.Sprintf("Здравствуйте!\n\nСтудент %s записался на ваш курс «%s».",
		ev.StudentName, ev.CourseName)
	return s.sendEmail([]string{ev.InstructorEmail}, subject, bodyText)
}

// HandleReview сообщает преподавателю о новом отзыве на курс.
func (s *SenderService) HandleReview(body []byte) error {
	const op = "sender.HandleReview"
	var ev models.ReviewEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if ev.InstructorEmail == "" {
		s.log.Info("instructor has no email, skip", sl.Op(op), slog.String("instructor_id", ev.InstructorID))
		return nil
	}

	subject := fmt.Sprintf("Новый отзыв на курс «%s»", ev.CourseName)
	bodyText := fmt.Sprintf("Здравствуйте!\n\nСтудент %s оценил ваш курс «%s» на %d из %d.",
		ev.StudentName, ev.CourseName, ev.Rating, models.MaxRating)
	if ev.Comment != "" {
		bodyText += "\n\nКомментарий: " + ev.Comment
	}
	return s.sendEmail([]string{ev.InstructorEmail}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	const op = "sender.sendEmail"
	from := s.transport.GetSMTPUser()
	msg := smtp.BuildMessage(from, to, subject, bodyText)

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := wc.Write(msg); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
