package storage

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// BlobScheme prefixes refs served by the Azure store: az://<container>/<blob>.
const BlobScheme = "az://"

type azureStorage struct {
	client *azblob.Client
}

// NewAzureStorage authenticates with an account name and shared key.
func NewAzureStorage(accountName string, accountKey string) (ImageStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureStorage{client: client}, nil
}

// NewAzureStorageFromConnectionString is used for Azurite and SAS setups.
func NewAzureStorageFromConnectionString(connectionString string) (ImageStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, err
	}
	return &azureStorage{client: client}, nil
}

// ParseBlobRef splits az://container/path/to/blob into its parts.
func ParseBlobRef(ref string) (container, blobName string, err error) {
	rest, ok := strings.CutPrefix(ref, BlobScheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not an %s ref", ErrInvalidRef, ref, BlobScheme)
	}
	container, blobName, _ = strings.Cut(rest, "/")
	blobName = strings.TrimLeft(blobName, "/")
	if container == "" || blobName == "" {
		return "", "", fmt.Errorf("%w: %q needs a container and a blob name", ErrInvalidRef, ref)
	}
	return container, blobName, nil
}

func (s *azureStorage) GetImage(ctx context.Context, ref string) (image.Image, error) {
	containerName, blobName, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}

	// Download blob to stream
	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	img, _, err := Decode(retryReader)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

func (s *azureStorage) PutImage(ctx context.Context, ref string, img image.Image) error {
	containerName, blobName, err := ParseBlobRef(ref)
	if err != nil {
		return err
	}

	data, err := PNGBytes(img)
	if err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	contentType := "image/png"
	_, err = s.client.UploadBuffer(ctx, containerName, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}
