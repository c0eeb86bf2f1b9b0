package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidKey       = errors.New("invalid object key")
	ErrInvalidSignature = errors.New("invalid upload signature")
	ErrUploadExpired    = errors.New("upload url expired")
)

// FileStorage keeps objects on local disk. Presigned uploads are HMAC-signed
// URLs pointing at the API's PUT /storage/*key route.
type FileStorage struct {
	basePath  string
	bucket    string
	uploadURL string
	secret    []byte
	now       func() time.Time
}

func NewFileStorage(basePath, bucket, uploadURL, secret string) *FileStorage {
	return &FileStorage{
		basePath:  basePath,
		bucket:    bucket,
		uploadURL: strings.TrimRight(uploadURL, "/"),
		secret:    []byte(secret),
		now:       time.Now,
	}
}

func (s *FileStorage) Bucket() string {
	return s.bucket
}

// BasePath is the directory the bucket is served from.
func (s *FileStorage) BasePath() string {
	return s.basePath
}

func (s *FileStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *FileStorage) sign(key, contentType string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "PUT\n%s\n%s\n%d", key, contentType, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *FileStorage) PresignPut(_ context.Context, key, contentType string, expiry time.Duration) (string, error) {
	if _, err := s.resolve(key); err != nil {
		return "", err
	}

	expires := s.now().Add(expiry).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("contentType", contentType)
	q.Set("signature", s.sign(key, contentType, expires))

	return fmt.Sprintf("%s/storage/%s?%s", s.uploadURL, key, q.Encode()), nil
}

// VerifyUpload checks the query of a presigned URL produced by PresignPut.
func (s *FileStorage) VerifyUpload(key string, query url.Values) (string, error) {
	expires, err := strconv.ParseInt(query.Get("expires"), 10, 64)
	if err != nil {
		return "", ErrInvalidSignature
	}
	contentType := query.Get("contentType")

	expected := s.sign(key, contentType, expires)
	if !hmac.Equal([]byte(expected), []byte(query.Get("signature"))) {
		return "", ErrInvalidSignature
	}
	if s.now().Unix() > expires {
		return "", ErrUploadExpired
	}
	return contentType, nil
}

func (s *FileStorage) Read(_ context.Context, key string) ([]byte, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return data, err
}

func (s *FileStorage) Write(_ context.Context, key string, data []byte, _ string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	// Создаем директорию если нужно
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

// WriteFrom streams an upload body to key.
func (s *FileStorage) WriteFrom(key string, r io.Reader) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, r)
	return err
}

func (s *FileStorage) Delete(_ context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStorage) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}
