package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"capidrive/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory store fakes. They mirror the mongo stores' observable behavior,
// including mongo.ErrNoDocuments as the not-found signal and the
// (target, granted_to) upsert semantics of the access store.

type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *memUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *user
	return &clone, nil
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type memFolderStore struct {
	mu      sync.Mutex
	folders map[primitive.ObjectID]*models.Folder
}

func newMemFolderStore() *memFolderStore {
	return &memFolderStore{folders: make(map[primitive.ObjectID]*models.Folder)}
}

func (s *memFolderStore) Insert(_ context.Context, folder *models.Folder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	clone := *folder
	s.folders[folder.ID] = &clone
	return nil
}

func (s *memFolderStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	folder, ok := s.folders[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *folder
	return &clone, nil
}

func (s *memFolderStore) Children(_ context.Context, parentID primitive.ObjectID) ([]models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Folder
	for _, folder := range s.folders {
		if folder.ParentID != nil && *folder.ParentID == parentID {
			out = append(out, *folder)
		}
	}
	return out, nil
}

func (s *memFolderStore) Roots(_ context.Context, ownerID primitive.ObjectID) ([]models.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Folder
	for _, folder := range s.folders {
		if folder.ParentID == nil && folder.OwnerID == ownerID {
			out = append(out, *folder)
		}
	}
	return out, nil
}

func (s *memFolderStore) SiblingExists(_ context.Context, name string, ownerID primitive.ObjectID, parentID *primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, folder := range s.folders {
		if folder.Name != name || folder.OwnerID != ownerID {
			continue
		}
		if parentID == nil && folder.ParentID == nil {
			return true, nil
		}
		if parentID != nil && folder.ParentID != nil && *parentID == *folder.ParentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memFolderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.folders, id)
	return nil
}

type memFileStore struct {
	mu    sync.Mutex
	files map[primitive.ObjectID]*models.FileTransfer
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[primitive.ObjectID]*models.FileTransfer)}
}

func (s *memFileStore) Insert(_ context.Context, file *models.FileTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	clone := *file
	s.files[file.ID] = &clone
	return nil
}

func (s *memFileStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.FileTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	file, ok := s.files[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *file
	return &clone, nil
}

func (s *memFileStore) InFolder(_ context.Context, folderID primitive.ObjectID) ([]models.FileTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FileTransfer
	for _, file := range s.files {
		if file.FolderID != nil && *file.FolderID == folderID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (s *memFileStore) InRoot(_ context.Context, ownerID primitive.ObjectID) ([]models.FileTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FileTransfer
	for _, file := range s.files {
		if file.FolderID == nil && file.OwnerID == ownerID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (s *memFileStore) ForUser(_ context.Context, userID primitive.ObjectID) ([]models.FileTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FileTransfer
	for _, file := range s.files {
		if file.OwnerID == userID || file.UploaderID == userID {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (s *memFileStore) Update(_ context.Context, file *models.FileTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[file.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	clone := *file
	s.files[file.ID] = &clone
	return nil
}

func (s *memFileStore) MarkViewed(_ context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if file, ok := s.files[id]; ok {
			file.IsViewed = true
		}
	}
	return nil
}

func (s *memFileStore) Expired(_ context.Context, cutoff time.Time) ([]models.FileTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FileTransfer
	for _, file := range s.files {
		if file.ExpiresAt != nil && file.ExpiresAt.Before(cutoff) {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (s *memFileStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, id)
	return nil
}

type fileAccessKey struct {
	fileID primitive.ObjectID
	userID primitive.ObjectID
}

type folderAccessKey struct {
	folderID primitive.ObjectID
	userID   primitive.ObjectID
}

type memAccessStore struct {
	mu           sync.Mutex
	fileAccess   map[fileAccessKey]*models.FileAccess
	folderAccess map[folderAccessKey]*models.FolderAccess
}

func newMemAccessStore() *memAccessStore {
	return &memAccessStore{
		fileAccess:   make(map[fileAccessKey]*models.FileAccess),
		folderAccess: make(map[folderAccessKey]*models.FolderAccess),
	}
}

func (s *memAccessStore) UpsertFileAccess(_ context.Context, access *models.FileAccess) (*models.FileAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fileAccessKey{fileID: access.FileID, userID: access.GrantedTo}
	if existing, ok := s.fileAccess[key]; ok {
		existing.Permission = access.Permission
		existing.GrantedBy = access.GrantedBy
		existing.ExpiresAt = access.ExpiresAt
		clone := *existing
		return &clone, nil
	}
	if access.ID.IsZero() {
		access.ID = primitive.NewObjectID()
	}
	clone := *access
	s.fileAccess[key] = &clone
	result := clone
	return &result, nil
}

func (s *memAccessStore) UpsertFolderAccess(_ context.Context, access *models.FolderAccess) (*models.FolderAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := folderAccessKey{folderID: access.FolderID, userID: access.GrantedTo}
	if existing, ok := s.folderAccess[key]; ok {
		existing.Permission = access.Permission
		existing.GrantedBy = access.GrantedBy
		existing.Propagate = access.Propagate
		existing.ExpiresAt = access.ExpiresAt
		clone := *existing
		return &clone, nil
	}
	if access.ID.IsZero() {
		access.ID = primitive.NewObjectID()
	}
	clone := *access
	s.folderAccess[key] = &clone
	result := clone
	return &result, nil
}

func (s *memAccessStore) GetFileAccess(_ context.Context, fileID, userID primitive.ObjectID) (*models.FileAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	access, ok := s.fileAccess[fileAccessKey{fileID: fileID, userID: userID}]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *access
	return &clone, nil
}

func (s *memAccessStore) GetFolderAccess(_ context.Context, folderID, userID primitive.ObjectID) (*models.FolderAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	access, ok := s.folderAccess[folderAccessKey{folderID: folderID, userID: userID}]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *access
	return &clone, nil
}

func (s *memAccessStore) ListFileAccess(_ context.Context, fileID primitive.ObjectID) ([]models.FileAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FileAccess
	for key, access := range s.fileAccess {
		if key.fileID == fileID {
			out = append(out, *access)
		}
	}
	return out, nil
}

func (s *memAccessStore) ListFolderAccess(_ context.Context, folderID primitive.ObjectID) ([]models.FolderAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FolderAccess
	for key, access := range s.folderAccess {
		if key.folderID == folderID {
			out = append(out, *access)
		}
	}
	return out, nil
}

func (s *memAccessStore) DeleteFileAccess(_ context.Context, fileID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fileAccessKey{fileID: fileID, userID: userID}
	if _, ok := s.fileAccess[key]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.fileAccess, key)
	return nil
}

func (s *memAccessStore) DeleteFolderAccess(_ context.Context, folderID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := folderAccessKey{folderID: folderID, userID: userID}
	if _, ok := s.folderAccess[key]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.folderAccess, key)
	return nil
}

func (s *memAccessStore) DeleteAllFileAccess(_ context.Context, fileID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.fileAccess {
		if key.fileID == fileID {
			delete(s.fileAccess, key)
		}
	}
	return nil
}

func (s *memAccessStore) DeleteAllFolderAccess(_ context.Context, folderID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.folderAccess {
		if key.folderID == folderID {
			delete(s.folderAccess, key)
		}
	}
	return nil
}

type memShareLinkStore struct {
	mu    sync.Mutex
	links map[primitive.ObjectID]*models.ShareLink
}

func newMemShareLinkStore() *memShareLinkStore {
	return &memShareLinkStore{links: make(map[primitive.ObjectID]*models.ShareLink)}
}

func (s *memShareLinkStore) Insert(_ context.Context, link *models.ShareLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	clone := *link
	s.links[link.ID] = &clone
	return nil
}

func (s *memShareLinkStore) GetByToken(_ context.Context, token string) (*models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, link := range s.links {
		if link.Token == token {
			clone := *link
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memShareLinkStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	clone := *link
	return &clone, nil
}

func (s *memShareLinkStore) ListByCreator(_ context.Context, userID primitive.ObjectID) ([]models.ShareLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ShareLink
	for _, link := range s.links {
		if link.CreatedBy == userID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (s *memShareLinkStore) Deactivate(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	link.IsActive = false
	return nil
}

type memNotificationStore struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{}
}

func (s *memNotificationStore) Insert(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	clone := *notification
	s.notifications = append(s.notifications, &clone)
	return nil
}

func (s *memNotificationStore) ListForRecipient(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, notification := range s.notifications {
		if notification.RecipientID == userID {
			out = append(out, *notification)
		}
	}
	return out, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, id, recipientID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, notification := range s.notifications {
		if notification.ID == id && notification.RecipientID == recipientID {
			notification.IsRead = true
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// memBlobStore is an in-memory blob backend.
type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (s *memBlobStore) UploadStream(key string, reader io.Reader, _ int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()
	return nil
}

func (s *memBlobStore) DownloadStream(key string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.blobs[key]
	s.mu.Unlock()
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

func (s *memBlobStore) Exists(key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.blobs[key]
	s.mu.Unlock()
	return ok, nil
}

func (s *memBlobStore) GetSize(key string) (int64, error) {
	s.mu.Lock()
	data, ok := s.blobs[key]
	s.mu.Unlock()
	if !ok {
		return 0, mongo.ErrNoDocuments
	}
	return int64(len(data)), nil
}
