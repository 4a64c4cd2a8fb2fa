package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader stores a registration document and returns the path or URL
// recorded on the user.
type Uploader interface {
	Save(ctx context.Context, file *multipart.FileHeader, name string) (string, error)
}

// IsPDF reports whether the uploaded file name has a .pdf extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// DocumentName derives a stable file name from the owner's email,
// e.g. jane@mail.com -> jane_mail_com.pdf.
func DocumentName(email, ext string) string {
	base := strings.NewReplacer("@", "_", ".", "_").Replace(email)
	return base + strings.ToLower(ext)
}

// LocalUploader writes documents under Dir and reports them relative to URLPrefix.
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

func NewLocalUploader(dir string) *LocalUploader {
	return &LocalUploader{Dir: dir, URLPrefix: "static/uploads"}
}

func (u *LocalUploader) Save(_ context.Context, file *multipart.FileHeader, name string) (string, error) {
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(u.Dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path.Join(u.URLPrefix, filepath.Base(name)), nil
}

// CloudinaryUploader stores documents in a Cloudinary folder.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) Save(ctx context.Context, file *multipart.FileHeader, name string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	publicID := strings.TrimSuffix(name, filepath.Ext(name))
	resp, err := u.cld.Upload.Upload(ctx, src, uploader.UploadParams{
		PublicID: publicID,
		Folder:   u.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload to cloudinary: %w", err)
	}
	return resp.SecureURL, nil
}
