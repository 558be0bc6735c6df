// Package resource resolves logical resource names against a root directory
// and reads them into memory.
package resource

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"github.com/klokapp/klok/internal/errors"
)

// EncryptedSuffix marks age encrypted resources.
const EncryptedSuffix = ".age"

// Store reads resources below a root directory.
type Store struct {
	root     string
	maxSize  int64
	identity age.Identity
}

type Option func(*Store) error

// WithMaxSize limits the size of resources returned by ReadFile.
func WithMaxSize(n int64) Option {
	return func(s *Store) error {
		s.maxSize = n
		return nil
	}
}

// WithPassphrase enables reading age encrypted resources.
func WithPassphrase(pw string) Option {
	return func(s *Store) error {
		if pw == "" {
			return nil
		}
		id, err := age.NewScryptIdentity(pw)
		if err != nil {
			return fmt.Errorf("could not build scrypt identity: %w", err)
		}
		s.identity = id
		return nil
	}
}

func New(root string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource root %v: %w", root, err)
	}
	s := &Store{root: abs}
	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Root returns the absolute resource root.
func (s *Store) Root() string {
	return s.root
}

// path maps a logical name to a path below the root. Names may use either
// slash style and may carry a leading slash.
func (s *Store) path(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" || !fs.ValidPath(name) {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), true
}

// Resolve returns the absolute path of an existing regular file.
func (s *Store) Resolve(name string) (string, bool) {
	p, ok := s.path(name)
	if !ok {
		return "", false
	}
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

// ReadFile returns the contents of a resource. If the resource is missing
// but an encrypted copy exists, the copy is decrypted.
func (s *Store) ReadFile(name string) ([]byte, error) {
	if p, ok := s.Resolve(name); ok {
		return s.readPath(p)
	}
	if p, ok := s.Resolve(name + EncryptedSuffix); ok && s.identity != nil {
		return s.decryptPath(p)
	}
	return nil, errors.NotFoundf("resource not found: %s", name)
}

func (s *Store) readPath(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "failed to read %s", p)
	}
	defer f.Close()
	return s.readLimited(f, p)
}

func (s *Store) decryptPath(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "failed to read %s", p)
	}
	defer f.Close()
	r, err := age.Decrypt(f, s.identity)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "could not start decrypting %s", p)
	}
	slog.Debug("Decrypting resource.", "path", p)
	return s.readLimited(r, p)
}

func (s *Store) readLimited(r io.Reader, p string) ([]byte, error) {
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	var b bytes.Buffer
	_, err := b.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "failed to read %s", p)
	}
	if s.maxSize > 0 && int64(b.Len()) > s.maxSize {
		return nil, errors.TooLargef("%s exceeds %d bytes", p, s.maxSize)
	}
	return b.Bytes(), nil
}

// Encrypt writes an age encrypted copy of src to dst using the passphrase.
func Encrypt(dst io.Writer, src io.Reader, passphrase string) (err error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("could not build scrypt recipient: %w", err)
	}
	w, err := age.Encrypt(dst, recipient)
	if err != nil {
		return fmt.Errorf("could not start encrypting: %w", err)
	}
	defer func() {
		closeErr := w.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	_, err = io.Copy(w, src)
	return err
}
