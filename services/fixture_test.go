package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"capidrive/models"

	"github.com/stretchr/testify/require"
)

// fixture wires the full service graph over in-memory stores.
type fixture struct {
	users         *memUserStore
	folders       *memFolderStore
	files         *memFileStore
	access        *memAccessStore
	links         *memShareLinkStore
	notifications *memNotificationStore
	blobs         *memBlobStore

	perms            *PermissionService
	notifier         *NotificationService
	authService      *AuthService
	accessService    *AccessService
	folderService    *FolderService
	fileService      *FileService
	shareLinkService *ShareLinkService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:         newMemUserStore(),
		folders:       newMemFolderStore(),
		files:         newMemFileStore(),
		access:        newMemAccessStore(),
		links:         newMemShareLinkStore(),
		notifications: newMemNotificationStore(),
		blobs:         newMemBlobStore(),
	}

	f.perms = NewPermissionService(f.access)
	f.notifier = NewNotificationService(f.notifications)
	f.authService = NewAuthService(f.users)
	f.accessService = NewAccessService(f.folders, f.files, f.access, f.users, f.perms, f.notifier)
	f.folderService = NewFolderService(f.folders, f.files, f.access, f.perms, f.accessService, f.blobs)
	f.fileService = NewFileService(
		f.files, f.folders, f.users, f.access, f.perms, f.accessService, f.blobs,
		NewExtensionScanner([]string{".exe", ".bat"}),
		NoopThumbnailer{},
		f.notifier,
		72*time.Hour,
	)
	f.shareLinkService = NewShareLinkService(f.links, f.files, f.folders, f.users, f.access, f.perms, f.blobs)

	return f
}

func (f *fixture) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "irrelevant",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.users.Insert(context.Background(), user))
	return user
}

func (f *fixture) addFolder(t *testing.T, actor *models.User, name string, parent *models.Folder) *models.Folder {
	t.Helper()
	req := &models.FolderCreateRequest{Name: name}
	if parent != nil {
		req.ParentID = parent.ID.Hex()
	}
	folder, err := f.folderService.Create(context.Background(), actor, req)
	require.NoError(t, err)
	return folder
}

func (f *fixture) uploadFile(t *testing.T, actor *models.User, filename string, folder *models.Folder) *models.FileTransfer {
	t.Helper()
	input := &UploadInput{
		Filename: filename,
		Reader:   bytes.NewReader([]byte("content of " + filename)),
		Size:     int64(len("content of " + filename)),
	}
	if folder != nil {
		input.FolderID = folder.ID.Hex()
	}
	file, err := f.fileService.Upload(context.Background(), actor, input)
	require.NoError(t, err)
	return file
}

func (f *fixture) grantFolder(t *testing.T, actor *models.User, folder *models.Folder, grantee *models.User, perm models.Permission, propagate bool) *models.FolderAccess {
	t.Helper()
	grant, err := f.accessService.GrantFolderAccess(context.Background(), actor, folder.ID, &models.GrantAccessRequest{
		Username:   grantee.Username,
		Permission: perm,
		Propagate:  &propagate,
	})
	require.NoError(t, err)
	return grant
}

func (f *fixture) grantFile(t *testing.T, actor *models.User, file *models.FileTransfer, grantee *models.User, perm models.Permission) *models.FileAccess {
	t.Helper()
	grant, err := f.accessService.GrantFileAccess(context.Background(), actor, file.ID, &models.GrantAccessRequest{
		Username:   grantee.Username,
		Permission: perm,
	})
	require.NoError(t, err)
	return grant
}
