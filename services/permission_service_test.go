package services

import (
	"context"
	"testing"
	"time"

	"capidrive/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePermissionAnonymous(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	file := f.uploadFile(t, alice, "doc.txt", nil)

	perm, err := f.perms.FilePermission(context.Background(), nil, file)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)
}

func TestFilePermissionOwnerAndUploader(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	// bob uploads into alice's shared folder: alice owns, bob uploaded
	shared := f.addFolder(t, alice, "Shared", nil)
	f.grantFolder(t, alice, shared, bob, models.PermissionEdit, true)
	file := f.uploadFile(t, bob, "report.pdf", shared)

	require.Equal(t, alice.ID, file.OwnerID)
	require.Equal(t, bob.ID, file.UploaderID)

	for _, user := range []*models.User{alice, bob} {
		perm, err := f.perms.FilePermission(context.Background(), user, file)
		require.NoError(t, err)
		assert.Equal(t, models.PermissionEdit, perm, user.Username)
	}
}

func TestFilePermissionDirectGrantBeatsFolderGrant(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	folder := f.addFolder(t, alice, "Docs", nil)
	file := f.uploadFile(t, alice, "notes.txt", folder)

	// folder says edit, the later direct grant says read; direct wins
	f.grantFolder(t, alice, folder, carol, models.PermissionEdit, false)
	f.grantFile(t, alice, file, carol, models.PermissionRead)

	perm, err := f.perms.FilePermission(context.Background(), carol, file)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionRead, perm)
}

func TestFilePermissionExpiredGrantFallsThroughToFolder(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	folder := f.addFolder(t, alice, "Docs", nil)
	file := f.uploadFile(t, alice, "notes.txt", folder)

	f.grantFolder(t, alice, folder, carol, models.PermissionRead, false)

	past := time.Now().Add(-time.Hour)
	_, err := f.accessService.GrantFileAccess(context.Background(), alice, file.ID, &models.GrantAccessRequest{
		Username:   carol.Username,
		Permission: models.PermissionEdit,
		ExpiresAt:  &past,
	})
	require.NoError(t, err)

	perm, err := f.perms.FilePermission(context.Background(), carol, file)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionRead, perm)
}

func TestFilePermissionOnlyImmediateParentCounts(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	top := f.addFolder(t, alice, "Top", nil)
	nested := f.addFolder(t, alice, "Nested", top)
	file := f.uploadFile(t, alice, "deep.txt", nested)

	// grant on Top with propagation off: the chain is never walked past the
	// immediate parent, so the file stays invisible to carol
	f.grantFolder(t, alice, top, carol, models.PermissionRead, false)

	perm, err := f.perms.FilePermission(context.Background(), carol, file)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)

	// with propagation the nested folder carries its own row and the file
	// becomes readable
	f.grantFolder(t, alice, top, carol, models.PermissionRead, true)

	perm, err = f.perms.FilePermission(context.Background(), carol, file)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionRead, perm)
}

func TestFolderPermissionOwnerUploaderSplit(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")

	shared := f.addFolder(t, alice, "Shared", nil)
	f.grantFolder(t, alice, shared, bob, models.PermissionEdit, true)

	// bob creates a subfolder inside alice's space: owner is alice
	sub := f.addFolder(t, bob, "BobsCorner", shared)
	require.Equal(t, alice.ID, sub.OwnerID)
	require.Equal(t, bob.ID, sub.UploaderID)

	alicePerm, err := f.perms.FolderPermission(context.Background(), alice, sub)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionEdit, alicePerm)

	// bob holds edit through the inherited grant row, not through ownership
	bobPerm, err := f.perms.FolderPermission(context.Background(), bob, sub)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionEdit, bobPerm)
}

func TestFolderPermissionExpiredGrant(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	folder := f.addFolder(t, alice, "Docs", nil)

	past := time.Now().Add(-time.Minute)
	_, err := f.accessService.GrantFolderAccess(context.Background(), alice, folder.ID, &models.GrantAccessRequest{
		Username:   carol.Username,
		Permission: models.PermissionEdit,
		ExpiresAt:  &past,
	})
	require.NoError(t, err)

	perm, err := f.perms.FolderPermission(context.Background(), carol, folder)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)
}

func TestRequirePermission(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice")
	carol := f.addUser(t, "carol")

	folder := f.addFolder(t, alice, "Docs", nil)
	file := f.uploadFile(t, alice, "notes.txt", folder)

	f.grantFile(t, alice, file, carol, models.PermissionRead)

	err := f.perms.RequireFilePermission(context.Background(), carol, file, models.PermissionRead)
	assert.NoError(t, err)

	err = f.perms.RequireFilePermission(context.Background(), carol, file, models.PermissionEdit)
	assert.ErrorIs(t, err, ErrInsufficientPermission)

	err = f.perms.RequireFolderPermission(context.Background(), carol, folder, models.PermissionRead)
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}
