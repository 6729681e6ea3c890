package services

import (
	"context"
	"fmt"
	"time"

	"capidrive/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier is the seam the core calls when something happened that the
// recipient should hear about. Delivery is best-effort; core operations never
// fail because a notification could not be written.
type Notifier interface {
	FileReceived(ctx context.Context, file *models.FileTransfer, uploader *models.User, folder *models.Folder)
	AccessGranted(ctx context.Context, granteeID primitive.ObjectID, grantedBy *models.User, targetName string)
}

// NotificationService is the mongo-backed notifier plus the read API for the
// notification feed.
type NotificationService struct {
	notifications NotificationStore
}

func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (ns *NotificationService) FileReceived(ctx context.Context, file *models.FileTransfer, uploader *models.User, folder *models.Folder) {
	var message string
	if folder != nil {
		message = fmt.Sprintf("%s uploaded a file to your folder %q", uploader.Username, folder.Name)
	} else {
		message = fmt.Sprintf("%s uploaded the file %q to your drive", uploader.Username, file.Filename)
	}
	ns.insert(ctx, file.OwnerID, uploader.ID, models.NotificationFileReceived, message)
}

func (ns *NotificationService) AccessGranted(ctx context.Context, granteeID primitive.ObjectID, grantedBy *models.User, targetName string) {
	message := fmt.Sprintf("%s granted you access to %q", grantedBy.Username, targetName)
	ns.insert(ctx, granteeID, grantedBy.ID, models.NotificationAccessGranted, message)
}

func (ns *NotificationService) insert(ctx context.Context, recipientID, senderID primitive.ObjectID, notificationType, message string) {
	notification := &models.Notification{
		RecipientID: recipientID,
		SenderID:    &senderID,
		Type:        notificationType,
		Message:     message,
		CreatedAt:   time.Now(),
	}
	if err := ns.notifications.Insert(ctx, notification); err != nil {
		logrus.WithError(err).Warn("failed to write notification")
	}
}

// List returns the recipient's notification feed, newest first.
func (ns *NotificationService) List(ctx context.Context, user *models.User) ([]models.Notification, error) {
	return ns.notifications.ListForRecipient(ctx, user.ID)
}

// MarkRead flags one of the recipient's notifications as read.
func (ns *NotificationService) MarkRead(ctx context.Context, user *models.User, id primitive.ObjectID) error {
	err := ns.notifications.MarkRead(ctx, id, user.ID)
	if isNoDocuments(err) {
		return ErrNotFound
	}
	return err
}
