package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"capidrive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadToOwnRoot(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	file := f.uploadFile(t, alice, "notes.txt", nil)

	assert.Equal(t, alice.ID, file.OwnerID)
	assert.Equal(t, alice.ID, file.UploaderID)
	assert.Nil(t, file.FolderID)
	assert.True(t, strings.HasPrefix(file.StorageKey, "alice/"))
	assert.NotNil(t, file.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), *file.ExpiresAt, time.Minute)

	exists, err := f.blobs.Exists(file.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadIntoSharedFolder(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	shared := f.addFolder(t, alice, "Shared", nil)
	f.grantFolder(t, alice, shared, bob, models.PermissionEdit, true)

	file := f.uploadFile(t, bob, "report.pdf", shared)

	// the file belongs to the folder owner; bob stays on record as uploader
	assert.Equal(t, alice.ID, file.OwnerID)
	assert.Equal(t, bob.ID, file.UploaderID)
	// the blob lands under the owner's prefix, not the uploader's
	assert.True(t, strings.HasPrefix(file.StorageKey, "alice/"))

	// the owner hears about it
	feed, err := f.notifier.List(context.Background(), alice)
	require.NoError(t, err)
	require.NotEmpty(t, feed)
	assert.Equal(t, models.NotificationFileReceived, feed[0].Type)
}

func TestUploadRequiresEditOnFolder(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	folder := f.addFolder(t, alice, "Docs", nil)
	f.grantFolder(t, alice, folder, carol, models.PermissionRead, false)

	_, err := f.fileService.Upload(context.Background(), carol, &UploadInput{
		Filename: "sneaky.txt",
		FolderID: folder.ID.Hex(),
		Reader:   bytes.NewReader([]byte("x")),
		Size:     1,
	})
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}

func TestUploadBlockedExtension(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	_, err := f.fileService.Upload(context.Background(), alice, &UploadInput{
		Filename: "malware.exe",
		Reader:   bytes.NewReader([]byte("MZ")),
		Size:     2,
	})
	assert.ErrorIs(t, err, ErrBlockedFileType)
}

func TestDownloadSetsReceiptFlagsForOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	file := f.uploadFile(t, alice, "doc.txt", nil)
	f.grantFile(t, alice, file, carol, models.PermissionRead)

	// a grantee download does not flip the receipt flags
	_, blob, err := f.fileService.Download(context.Background(), carol, file.ID)
	require.NoError(t, err)
	blob.Close()

	stored, err := f.files.GetByID(context.Background(), file.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDownloaded)

	// the owner download does
	_, blob, err = f.fileService.Download(context.Background(), alice, file.ID)
	require.NoError(t, err)
	content, err := io.ReadAll(blob)
	blob.Close()
	require.NoError(t, err)
	assert.Equal(t, "content of doc.txt", string(content))

	stored, err = f.files.GetByID(context.Background(), file.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDownloaded)
	assert.True(t, stored.IsViewed)
}

func TestUpdateFileRequiresEdit(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	file := f.uploadFile(t, alice, "old.txt", nil)
	f.grantFile(t, alice, file, carol, models.PermissionRead)

	_, err := f.fileService.Update(context.Background(), carol, file.ID, &models.FileUpdateRequest{Filename: "new.txt"})
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	f.grantFile(t, alice, file, carol, models.PermissionEdit)
	updated, err := f.fileService.Update(context.Background(), carol, file.ID, &models.FileUpdateRequest{
		Filename:    "new.txt",
		Description: "renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.txt", updated.Filename)
	assert.Equal(t, "renamed", updated.Description)
}

func TestMoveFile(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	source := f.addFolder(t, alice, "Source", nil)
	dest := f.addFolder(t, alice, "Dest", nil)
	file := f.uploadFile(t, alice, "doc.txt", source)

	moved, err := f.fileService.Move(context.Background(), alice, file.ID, &models.FileMoveRequest{FolderID: dest.ID.Hex()})
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, dest.ID, *moved.FolderID)

	// move to root
	moved, err = f.fileService.Move(context.Background(), alice, file.ID, &models.FileMoveRequest{})
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)

	// edit on the destination is required
	f.grantFile(t, alice, file, carol, models.PermissionEdit)
	_, err = f.fileService.Move(context.Background(), carol, file.ID, &models.FileMoveRequest{FolderID: dest.ID.Hex()})
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}

func TestMoveKeepsDirectGrants(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	source := f.addFolder(t, alice, "Source", nil)
	dest := f.addFolder(t, alice, "Dest", nil)
	file := f.uploadFile(t, alice, "doc.txt", source)
	f.grantFile(t, alice, file, carol, models.PermissionRead)

	moved, err := f.fileService.Move(context.Background(), alice, file.ID, &models.FileMoveRequest{FolderID: dest.ID.Hex()})
	require.NoError(t, err)

	perm, err := f.perms.FilePermission(context.Background(), carol, moved)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionRead, perm)
}

func TestDeleteFileOwnerOrUploaderOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")

	shared := f.addFolder(t, alice, "Shared", nil)
	f.grantFolder(t, alice, shared, bob, models.PermissionEdit, true)
	file := f.uploadFile(t, bob, "report.pdf", shared)

	// edit through a grant is not enough to delete
	f.grantFile(t, alice, file, carol, models.PermissionEdit)
	err := f.fileService.Delete(context.Background(), carol, file.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// the uploader may delete even though alice owns the file
	err = f.fileService.Delete(context.Background(), bob, file.ID)
	require.NoError(t, err)

	_, err = f.files.GetByID(context.Background(), file.ID)
	assert.Error(t, err)
	exists, err := f.blobs.Exists(file.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMarkViewedOwnerOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	shared := f.addFolder(t, alice, "Shared", nil)
	f.grantFolder(t, alice, shared, bob, models.PermissionEdit, true)
	file := f.uploadFile(t, bob, "report.pdf", shared)

	// the uploader cannot mark the owner's file viewed
	err := f.fileService.MarkViewed(context.Background(), bob, file.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.fileService.MarkViewed(context.Background(), alice, file.ID)
	require.NoError(t, err)

	stored, err := f.files.GetByID(context.Background(), file.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsViewed)
}

func TestCleanupExpired(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	fresh := f.uploadFile(t, alice, "fresh.txt", nil)
	stale := f.uploadFile(t, alice, "stale.txt", nil)

	past := time.Now().Add(-time.Hour)
	stale.ExpiresAt = &past
	require.NoError(t, f.files.Update(context.Background(), stale))

	removed, err := f.fileService.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.files.GetByID(context.Background(), stale.ID)
	assert.Error(t, err)
	_, err = f.files.GetByID(context.Background(), fresh.ID)
	assert.NoError(t, err)

	exists, err := f.blobs.Exists(stale.StorageKey)
	require.NoError(t, err)
	assert.False(t, exists)
}
