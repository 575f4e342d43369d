package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists files on disk under a base directory.
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./slides"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: abs}, nil
}

// SaveStream copies from reader into the target file, replacing any previous
// content. The write goes through a temp file so readers never see a partial deck.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare storage directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create storage file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write storage stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close storage file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(filename string) (*os.File, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open storage file: %w", err)
	}
	return file, nil
}

// Exists reports whether a regular file is stored under filename.
func (s *LocalStorage) Exists(filename string) (bool, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat storage file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// RemoveAll deletes a stored directory and everything below it.
func (s *LocalStorage) RemoveAll(dir string) error {
	path, err := s.resolve(dir)
	if err != nil {
		return err
	}
	if path == s.baseDir {
		return fmt.Errorf("refusing to remove storage root")
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete storage directory: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(filename string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(filename))
	if path != s.baseDir && !strings.HasPrefix(path, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage directory", filename)
	}
	return path, nil
}

// LocalSlideStore serves slide decks from disk. Links point back at the
// portal's download endpoint and carry an HMAC token.
type LocalSlideStore struct {
	files        *LocalStorage
	signer       *SignedURLSigner
	downloadPath string
}

// NewLocalSlideStore wires disk storage with the signer. downloadPath is the
// route that redeems tokens, e.g. /api/slides/download.
func NewLocalSlideStore(files *LocalStorage, signer *SignedURLSigner, downloadPath string) *LocalSlideStore {
	return &LocalSlideStore{files: files, signer: signer, downloadPath: downloadPath}
}

// Put stores the deck, overwriting any previous upload for the key.
func (l *LocalSlideStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	return l.files.SaveStream(key, r)
}

// Link returns a signed download link or ErrObjectNotFound.
func (l *LocalSlideStore) Link(_ context.Context, key string) (string, time.Time, error) {
	ok, err := l.files.Exists(key)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, ErrObjectNotFound
	}
	token, expiresAt, err := l.signer.Generate(key)
	if err != nil {
		return "", time.Time{}, err
	}
	return l.downloadPath + "?token=" + url.QueryEscape(token), expiresAt, nil
}

// DeletePrefix removes every deck stored under the prefix.
func (l *LocalSlideStore) DeletePrefix(_ context.Context, prefix string) error {
	return l.files.RemoveAll(strings.TrimSuffix(prefix, "/"))
}

// OpenSigned redeems a download token. Invalid and expired tokens surface
// the signer errors unchanged.
func (l *LocalSlideStore) OpenSigned(token string) (*os.File, string, error) {
	key, _, err := l.signer.Parse(token)
	if err != nil {
		return nil, "", err
	}
	file, err := l.files.Open(key)
	if err != nil {
		return nil, "", err
	}
	return file, key, nil
}
