// Package notifier публикует доменные события маркетплейса в брокер сообщений.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Publisher отправляет событие с ключом маршрутизации.
type Publisher interface {
	Publish(routingKey string, event any) error
}

// UserRepository нужен для поиска e-mail преподавателя.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// EventCounter учитывает публикации.
type EventCounter interface {
	EventPublished(event string, err error)
}

// Notifier дополняет события адресом преподавателя и публикует их.
// При nil Publisher публикация отключена.
type Notifier struct {
	pub     Publisher
	users   UserRepository
	counter EventCounter
	log     *slog.Logger
}

// New создает новый экземпляр Notifier.
func New(pub Publisher, users UserRepository, counter EventCounter, log *slog.Logger) *Notifier {
	return &Notifier{
		pub:     pub,
		users:   users,
		counter: counter,
		log:     log,
	}
}

// EnrollmentCreated публикует событие о записи студента на курс.
func (n *Notifier) EnrollmentCreated(ctx context.Context, ev models.EnrollmentEvent) error {
	const op = "notifier.EnrollmentCreated"
	if n.pub == nil {
		return nil
	}
	if ev.InstructorEmail == "" {
		ev.InstructorEmail = n.instructorEmail(ctx, ev.InstructorID)
	}
	return n.publish(op, models.EventEnrollmentCreated, ev)
}

// ReviewCreated публикует событие о новом отзыве.
func (n *Notifier) ReviewCreated(ctx context.Context, ev models.ReviewEvent) error {
	const op = "notifier.ReviewCreated"
	if n.pub == nil {
		return nil
	}
	if ev.InstructorEmail == "" {
		ev.InstructorEmail = n.instructorEmail(ctx, ev.InstructorID)
	}
	return n.publish(op, models.EventReviewCreated, ev)
}

func (n *Notifier) publish(op, key string, ev any) error {
	err := n.pub.Publish(key, ev)
	if n.counter != nil {
		n.counter.EventPublished(key, err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n.log.Debug("event published", sl.Op(op), slog.String("event", key))
	return nil
}

// instructorEmail возвращает пустую строку, если адрес найти не удалось.
func (n *Notifier) instructorEmail(ctx context.Context, instructorID string) string {
	u, err := n.users.GetUser(ctx, instructorID)
	if err != nil {
		n.log.Warn("failed to load instructor for notification", slog.String("instructor_id", instructorID), sl.Err(err))
		return ""
	}
	return u.Email
}
