package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/sirupsen/logrus"
)

const (
	blobNamespace = "state/"
	blobTimeout   = 30 * time.Second
	jsonMediaType = "application/json"
)

// AzureStorage keeps every key as a JSON blob under a fixed namespace of
// one container, so the container can be shared with other data.
type AzureStorage struct {
	client    *azblob.Client
	container string
}

var _ StorageInterface = (*AzureStorage)(nil)

// NewAzureStorage connects with the default Azure credential chain
// (managed identity in production, developer login locally) and creates
// the container when it is missing.
func NewAzureStorage(accountName, containerName string) (*AzureStorage, error) {
	if accountName == "" {
		return nil, fmt.Errorf("storage account name is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azblob.NewClient(fmt.Sprintf("https://%s.blob.core.windows.net/", accountName), credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}

	s := &AzureStorage{client: client, container: containerName}
	if err := s.ensureContainer(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *AzureStorage) ensureContainer() error {
	ctx, cancel := context.WithTimeout(context.Background(), blobTimeout)
	defer cancel()

	_, err := s.client.CreateContainer(ctx, s.container, nil)
	switch {
	case err == nil:
		logrus.Infof("Created container %s", s.container)
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		logrus.Debugf("Using existing container %s", s.container)
	default:
		return fmt.Errorf("failed to create container %s: %w", s.container, err)
	}
	return nil
}

// Store overwrites the value of key
func (s *AzureStorage) Store(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), blobTimeout)
	defer cancel()

	contentType := jsonMediaType
	_, err := s.client.UploadBuffer(ctx, s.container, blobNamespace+key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	logrus.Debugf("Stored %s in Azure Blob Storage (%d bytes)", key, len(data))
	return nil
}

// Retrieve returns the value of key or ErrNotFound
func (s *AzureStorage) Retrieve(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), blobTimeout)
	defer cancel()

	response, err := s.client.DownloadStream(ctx, s.container, blobNamespace+key, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", key, err)
	}
	defer response.Body.Close()

	return io.ReadAll(response.Body)
}

// List returns the keys starting with prefix
func (s *AzureStorage) List(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), blobTimeout)
	defer cancel()

	full := blobNamespace + prefix
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{Prefix: &full})

	var keys []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, strings.TrimPrefix(*item.Name, blobNamespace))
			}
		}
	}
	return keys, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *AzureStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), blobTimeout)
	defer cancel()

	_, err := s.client.DeleteBlob(ctx, s.container, blobNamespace+key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
