// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/rentloop/rentloop-backend/internal/config"
)

// StorageService keeps signed lease documents and property photos in S3.
type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
	IsPublic     bool
}

// LeaseDocumentOptions constrains uploads attached to leases.
func LeaseDocumentOptions() UploadOptions {
	return UploadOptions{
		Folder:       "lease-documents",
		MaxSize:      20 << 20,
		AllowedTypes: []string{".pdf", ".doc", ".docx"},
	}
}

// PropertyPhotoOptions constrains property gallery uploads.
func PropertyPhotoOptions() UploadOptions {
	return UploadOptions{
		Folder:       "property-photos",
		MaxSize:      10 << 20,
		AllowedTypes: []string{".jpg", ".jpeg", ".png", ".webp"},
		IsPublic:     true,
	}
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{cfg: cfg}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

func (s *StorageService) UploadFile(file multipart.File, header *multipart.FileHeader, options UploadOptions) (*UploadResult, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum allowed size %d bytes", header.Size, options.MaxSize)
	}

	if len(options.AllowedTypes) > 0 {
		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		allowed := false
		for _, allowedType := range options.AllowedTypes {
			if fileExt == allowedType {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("file type %s is not allowed", fileExt)
		}
	}

	key := s.generateKey(header.Filename, options.Folder)

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if s.s3Client == nil {
		// Local development: nothing is stored, return a placeholder URL so
		// the caller flow still works end to end.
		return &UploadResult{
			URL:      "/uploads/" + key,
			Key:      key,
			Size:     header.Size,
			MimeType: header.Header.Get("Content-Type"),
		}, nil
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(header.Header.Get("Content-Type")),
	}
	if options.IsPublic {
		input.ACL = aws.String("public-read")
	}

	if _, err := s.s3Client.PutObject(input); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		URL:      s.objectURL(key),
		Key:      key,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}

func (s *StorageService) DeleteFile(key string) error {
	if s.s3Client == nil {
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

func (s *StorageService) generateKey(filename, folder string) string {
	ext := filepath.Ext(filename)
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

func (s *StorageService) objectURL(key string) string {
	if s.cfg.AWS.CloudFrontURL != "" {
		return s.cfg.AWS.CloudFrontURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AWS.S3Bucket, s.cfg.AWS.Region, key)
}
