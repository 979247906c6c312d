package rabbitmq

import "github.com/magabrotheeeer/course-marketplace/internal/models"

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Очереди уведомлений преподавателей.
const (
	QueueEnrollmentNotifications = "notification.enrollment"
	QueueReviewNotifications     = "notification.review"
)

// NotificationQueues возвращает очереди, которые слушает notification-sender.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueEnrollmentNotifications, RoutingKey: models.EventEnrollmentCreated},
		{QueueName: QueueReviewNotifications, RoutingKey: models.EventReviewCreated},
	}
}
