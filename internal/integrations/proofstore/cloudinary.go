package proofstore

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore подтверждения оплаты в Cloudinary
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore создает хранилище по CLOUDINARY_URL
func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Remove удаляет ресурс; ресурс, которого уже нет, ошибкой не считается
func (s *CloudinaryStore) Remove(ctx context.Context, ref string) error {
	publicID := PublicID(ref, s.folder)
	if publicID == "" {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemove, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("%w: %s", ErrRemove, resp.Error.Message)
	}
	return nil
}

// PublicID извлекает public id из URL доставки или имени файла
//
//	https://res.cloudinary.com/demo/image/upload/v1712/proofs/abc.jpg -> proofs/abc
//	abc.jpg (folder "proofs") -> proofs/abc
func PublicID(ref, folder string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if u, err := url.Parse(ref); err == nil && u.Host != "" {
		p := u.Path
		idx := strings.Index(p, "/upload/")
		if idx < 0 {
			return ""
		}
		p = p[idx+len("/upload/"):]
		// версия ресурса v<digits>
		if first, rest, ok := strings.Cut(p, "/"); ok && isVersion(first) {
			p = rest
		}
		return strings.TrimSuffix(p, path.Ext(p))
	}

	id := strings.TrimSuffix(ref, path.Ext(ref))
	if folder != "" && !strings.Contains(id, "/") {
		id = path.Join(folder, id)
	}
	return id
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
