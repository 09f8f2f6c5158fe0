package blobsync

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureContainer is a Container backed by an Azure Blob Storage container.
type AzureContainer struct {
	client    *azblob.Client
	container string
}

// NewAzureContainer connects to accountURL using DefaultAzureCredential, or
// anonymously when anonymous is set (public containers).
func NewAzureContainer(accountURL, container string, anonymous bool) (*AzureContainer, error) {
	if accountURL == "" || container == "" {
		return nil, fmt.Errorf("blob account URL and container are required")
	}

	var (
		client *azblob.Client
		err    error
	)
	if anonymous {
		client, err = azblob.NewClientWithNoCredential(accountURL, nil)
	} else {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("creating Azure credential: %w", credErr)
		}
		client, err = azblob.NewClient(accountURL, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &AzureContainer{client: client, container: container}, nil
}

// List returns every blob under prefix.
func (a *AzureContainer) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = to.Ptr(prefix)
	}

	var out []BlobInfo
	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			info := BlobInfo{Name: *item.Name}
			if p := item.Properties; p != nil {
				if p.ETag != nil {
					info.ETag = string(*p.ETag)
				}
				if p.ContentLength != nil {
					info.Size = *p.ContentLength
				}
			}
			out = append(out, info)
		}
	}
	return out, nil
}

// Download writes the named blob to dst.
func (a *AzureContainer) Download(ctx context.Context, name string, dst *os.File) error {
	_, err := a.client.DownloadFile(ctx, a.container, name, dst, nil)
	return err
}

var _ Container = (*AzureContainer)(nil)
