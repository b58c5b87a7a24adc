package supabase

import (
	"bytes"
	"context"
	"fmt"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient wraps Supabase Storage as the marketplace blob store:
// order brief images, submission deliverables, and profile avatars all go
// through it.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	// Ensure URL doesn't have trailing slash
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// Upload stores a blob at the given path and returns its public URL. Paths
// follow users/{uid}/... so per-user cleanup stays a prefix operation.
func (s *StorageClient) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.GetPublicURL(path), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

func (s *StorageClient) DeleteFile(storagePath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	return err
}

// DeleteUserFiles removes everything stored under one user's prefix.
func (s *StorageClient) DeleteUserFiles(uid string) error {
	prefix := fmt.Sprintf("users/%s/", uid)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		filePaths := make([]string, len(files))
		for i, file := range files {
			filePaths[i] = file.Name
		}
		_, err = s.client.RemoveFile(s.bucket, filePaths)
		if err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}

func (s *StorageClient) DownloadFile(storagePath string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return data, nil
}

// OrderFilePath builds the storage path for a file attached to an order.
func OrderFilePath(uid, orderID, filename string) string {
	return fmt.Sprintf("users/%s/orders/%s/%s", uid, orderID, filename)
}

// AvatarPath builds the storage path for a profile avatar.
func AvatarPath(uid, filename string) string {
	return fmt.Sprintf("users/%s/avatar/%s", uid, filename)
}
