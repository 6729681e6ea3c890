package services

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"sort"
	"testing"

	"capidrive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateFolderAtRoot(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	folder := f.addFolder(t, alice, "Documents", nil)
	assert.Equal(t, alice.ID, folder.OwnerID)
	assert.Equal(t, alice.ID, folder.UploaderID)
	assert.Nil(t, folder.ParentID)
}

func TestCreateFolderInSharedParent(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	shared := f.addFolder(t, alice, "Shared", nil)
	f.grantFolder(t, alice, shared, bob, models.PermissionEdit, true)

	sub, err := f.folderService.Create(context.Background(), bob, &models.FolderCreateRequest{
		Name:     "FromBob",
		ParentID: shared.ID.Hex(),
	})
	require.NoError(t, err)

	// ownership follows the parent, authorship follows the actor
	assert.Equal(t, alice.ID, sub.OwnerID)
	assert.Equal(t, bob.ID, sub.UploaderID)
}

func TestCreateFolderRequiresEditOnParent(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	parent := f.addFolder(t, alice, "Private", nil)
	f.grantFolder(t, alice, parent, carol, models.PermissionRead, false)

	_, err := f.folderService.Create(context.Background(), carol, &models.FolderCreateRequest{
		Name:     "Nope",
		ParentID: parent.ID.Hex(),
	})
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}

func TestCreateFolderDuplicateName(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	f.addFolder(t, alice, "Photos", nil)

	_, err := f.folderService.Create(context.Background(), alice, &models.FolderCreateRequest{Name: "Photos"})
	assert.ErrorIs(t, err, ErrDuplicateFolder)

	// same name under a different parent is fine
	other := f.addFolder(t, alice, "Backup", nil)
	_, err = f.folderService.Create(context.Background(), alice, &models.FolderCreateRequest{
		Name:     "Photos",
		ParentID: other.ID.Hex(),
	})
	assert.NoError(t, err)
}

// racingFolderStore stands in for a concurrent create: the sibling check
// misses the other writer's row but the unique index catches the insert.
type racingFolderStore struct {
	FolderStore
}

func (racingFolderStore) SiblingExists(context.Context, string, primitive.ObjectID, *primitive.ObjectID) (bool, error) {
	return false, nil
}

func (racingFolderStore) Insert(context.Context, *models.Folder) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

func TestCreateFolderConcurrentDuplicate(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	svc := NewFolderService(racingFolderStore{f.folders}, f.files, f.access, f.perms, f.accessService, f.blobs)

	_, err := svc.Create(context.Background(), alice, &models.FolderCreateRequest{Name: "Docs"})
	assert.ErrorIs(t, err, ErrDuplicateFolder)
}

func TestFolderContents(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	folder := f.addFolder(t, alice, "Docs", nil)
	f.addFolder(t, alice, "Nested", folder)
	f.uploadFile(t, alice, "a.txt", folder)
	f.uploadFile(t, alice, "b.txt", folder)

	contents, err := f.folderService.Contents(context.Background(), alice, folder.ID)
	require.NoError(t, err)
	assert.Len(t, contents.Subfolders, 1)
	assert.Len(t, contents.Files, 2)
}

func TestRootContents(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	f.addFolder(t, alice, "Mine", nil)
	f.uploadFile(t, alice, "root.txt", nil)
	f.addFolder(t, bob, "NotMine", nil)

	contents, err := f.folderService.RootContents(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, contents.Subfolders, 1)
	assert.Len(t, contents.Files, 1)
	assert.Equal(t, "Mine", contents.Subfolders[0].Name)
}

func TestDeleteFolderRemovesSubtree(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	top := f.addFolder(t, alice, "Top", nil)
	mid := f.addFolder(t, alice, "Mid", top)
	topFile := f.uploadFile(t, alice, "top.txt", top)
	midFile := f.uploadFile(t, alice, "mid.txt", mid)

	err := f.folderService.Delete(context.Background(), alice, top.ID)
	require.NoError(t, err)

	for _, id := range []primitive.ObjectID{top.ID, mid.ID} {
		_, err := f.folders.GetByID(context.Background(), id)
		assert.Error(t, err)
	}

	for _, file := range []*models.FileTransfer{topFile, midFile} {
		_, err := f.files.GetByID(context.Background(), file.ID)
		assert.Error(t, err, file.Filename)
		exists, err := f.blobs.Exists(file.StorageKey)
		require.NoError(t, err)
		assert.False(t, exists, file.Filename)
	}
}

func TestDeleteFolderIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	top := f.addFolder(t, alice, "Top", nil)
	mid := f.addFolder(t, alice, "Mid", top)
	f.uploadFile(t, alice, "mid.txt", mid)

	// removing the middle first leaves the tree partially deleted; deleting
	// the root afterwards still succeeds
	require.NoError(t, f.folderService.Delete(context.Background(), alice, mid.ID))
	require.NoError(t, f.folderService.Delete(context.Background(), alice, top.ID))

	err := f.folderService.Delete(context.Background(), alice, top.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFolderRequiresEditAtRootOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	top := f.addFolder(t, alice, "Top", nil)
	f.grantFolder(t, alice, top, carol, models.PermissionRead, true)

	err := f.folderService.Delete(context.Background(), carol, top.ID)
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	f.grantFolder(t, alice, top, carol, models.PermissionEdit, false)
	err = f.folderService.Delete(context.Background(), carol, top.ID)
	assert.NoError(t, err)
}

func TestFolderMarkViewed(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	top := f.addFolder(t, alice, "Top", nil)
	mid := f.addFolder(t, alice, "Mid", top)
	f.uploadFile(t, alice, "seen.txt", top)
	hidden := f.uploadFile(t, alice, "hidden.txt", mid)

	// carol sees only the top folder; the nested file stays untouched
	f.grantFolder(t, alice, top, carol, models.PermissionRead, false)

	count, err := f.folderService.MarkViewed(context.Background(), carol, top.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.files.GetByID(context.Background(), hidden.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsViewed)

	// second run over the same tree flags nothing new
	count, err = f.folderService.MarkViewed(context.Background(), carol, top.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDownloadZipStreamsAccessibleFiles(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")

	top := f.addFolder(t, alice, "Album", nil)
	nested := f.addFolder(t, alice, "Trip", top)
	f.uploadFile(t, alice, "cover.jpg", top)
	f.uploadFile(t, alice, "beach.jpg", nested)

	archive, name, err := f.folderService.DownloadZip(context.Background(), alice, top.ID)
	require.NoError(t, err)
	defer archive.Close()

	assert.Equal(t, "Album.zip", name)

	data, err := io.ReadAll(archive)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var paths []string
	for _, entry := range zr.File {
		paths = append(paths, entry.Name)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"Album/Trip/beach.jpg", "Album/cover.jpg"}, paths)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}

func TestDownloadZipFiltersByPermission(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	top := f.addFolder(t, alice, "Mixed", nil)
	f.uploadFile(t, alice, "open.txt", top)
	nested := f.addFolder(t, alice, "Secret", top)
	f.uploadFile(t, alice, "closed.txt", nested)

	// the non-propagating grant reaches open.txt through its immediate
	// parent but never touches the nested folder, so closed.txt is skipped
	f.grantFolder(t, alice, top, carol, models.PermissionRead, false)

	archive, _, err := f.folderService.DownloadZip(context.Background(), carol, top.ID)
	require.NoError(t, err)
	defer archive.Close()

	data, err := io.ReadAll(archive)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	require.Len(t, zr.File, 1)
	assert.Equal(t, "Mixed/open.txt", zr.File[0].Name)
}
