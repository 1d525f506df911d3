package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
)

// Store holds report photos and export files.
// Names are slash-separated relative keys such as "reports/1700000000000.jpg";
// returned paths are what callers persist and later pass to Read or Delete.
type Store interface {
	CopyFrom(ctx context.Context, src, name string) (string, error)
	Write(ctx context.Context, name string, data []byte) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// ErrOutsideStore marks a path that does not belong to the store
var ErrOutsideStore = errors.New("path is outside the blob store")

func outsideStore(op, p string) error {
	return &apperr.Error{Kind: apperr.KindValidation, Op: op, Msg: p, Err: ErrOutsideStore}
}

// LocalStore keeps blobs under a root directory on disk
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve blob root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute root directory
func (s *LocalStore) Root() string {
	return s.root
}

// resolve maps a stored path or relative name to a file under root.
// Anything that lands outside root after cleaning is refused.
func (s *LocalStore) resolve(op, p string) (string, error) {
	p = strings.TrimPrefix(p, "file://")
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.root, filepath.FromSlash(p))
	}
	p = filepath.Clean(p)
	if !s.contains(p) {
		return "", outsideStore(op, p)
	}
	return p, nil
}

func (s *LocalStore) contains(p string) bool {
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// source resolves the file CopyFrom ingests. Absolute paths name a local
// file handed over by the server (a spooled upload); relative ones are
// store names and must stay under root.
func (s *LocalStore) source(op, p string) (string, error) {
	p = strings.TrimPrefix(p, "file://")
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	return s.resolve(op, p)
}

func (s *LocalStore) CopyFrom(_ context.Context, src, name string) (string, error) {
	dst, err := s.resolve("blob.copy", name)
	if err != nil {
		return "", err
	}
	from, err := s.source("blob.copy", src)
	if err != nil {
		return "", err
	}

	in, err := os.Open(from)
	if err != nil {
		return "", apperr.Storage("blob.copy", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", apperr.Storage("blob.copy", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return "", apperr.Storage("blob.copy", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", apperr.Storage("blob.copy", err)
	}
	if err := out.Close(); err != nil {
		return "", apperr.Storage("blob.copy", err)
	}
	return dst, nil
}

func (s *LocalStore) Write(_ context.Context, name string, data []byte) (string, error) {
	dst, err := s.resolve("blob.write", name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", apperr.Storage("blob.write", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", apperr.Storage("blob.write", err)
	}
	return dst, nil
}

func (s *LocalStore) Read(_ context.Context, path string) ([]byte, error) {
	p, err := s.resolve("blob.read", path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, apperr.Storage("blob.read", err)
	}
	return data, nil
}

// Delete is idempotent: a missing file is not an error. Paths outside the
// store are refused and nothing is removed.
func (s *LocalStore) Delete(_ context.Context, path string) error {
	p, err := s.resolve("blob.delete", path)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Storage("blob.delete", err)
	}
	return nil
}
