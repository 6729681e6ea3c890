package services

// ThumbnailGenerator produces a thumbnail blob for a stored file and returns
// its storage key, or "" when the file type has no thumbnail. Generation is
// best-effort; upload never fails because of it.
type ThumbnailGenerator interface {
	Generate(storageKey, filename string) (string, error)
}

// NoopThumbnailer disables thumbnail generation.
type NoopThumbnailer struct{}

func (NoopThumbnailer) Generate(storageKey, filename string) (string, error) {
	return "", nil
}
