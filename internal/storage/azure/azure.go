package azure

import (
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/backup-locations/internal/config"
	"github.com/Chapsvision-dev/backup-locations/internal/storage"
)

// Backend splits Azure blob URLs
// (https://<account>.blob.core.windows.net/<container>/<blob>).
type Backend struct {
	account   string
	container string
}

func (b *Backend) Name() string     { return "azure" }
func (b *Backend) Filesystem() bool { return false }

// Object parses location and returns the container as bucket and the blob
// name as key. When an account or container is configured, locations
// outside of it are rejected.
func (b *Backend) Object(location string) (storage.Object, error) {
	parts, err := azblob.ParseURL(location)
	if err != nil {
		return storage.Object{}, fmt.Errorf("%w: %v", storage.ErrUnsupportedLocation, err)
	}
	if parts.Scheme != "https" && parts.Scheme != "http" {
		return storage.Object{}, fmt.Errorf("%w: azure wants an https blob URL, got %q", storage.ErrUnsupportedLocation, location)
	}
	if parts.ContainerName == "" {
		return storage.Object{}, fmt.Errorf("%w: %q has no container", storage.ErrUnsupportedLocation, location)
	}

	account := accountName(parts)
	if b.account != "" && !strings.EqualFold(account, b.account) {
		return storage.Object{}, fmt.Errorf("%w: %q is not in storage account %s", storage.ErrUnsupportedLocation, location, b.account)
	}
	if b.container != "" && parts.ContainerName != b.container {
		return storage.Object{}, fmt.Errorf("%w: %q is not in container %s", storage.ErrUnsupportedLocation, location, b.container)
	}

	log.Debug().
		Str("action", "azure_parse").
		Str("account", account).
		Str("container", parts.ContainerName).
		Str("blob", parts.BlobName).
		Msg("parsed blob URL")
	return storage.Object{Bucket: parts.ContainerName, Key: parts.BlobName}, nil
}

// accountName handles both host-style and IP-style (emulator) endpoints.
func accountName(parts azblob.URLParts) string {
	if parts.IPEndpointStyleInfo.AccountName != "" {
		return parts.IPEndpointStyleInfo.AccountName
	}
	account, _, _ := strings.Cut(parts.Host, ".")
	return account
}

func init() {
	storage.Register("azure", func(cfg any) (storage.Backend, error) {
		c, ok := cfg.(config.Config)
		if !ok {
			return nil, fmt.Errorf("azure: invalid config type")
		}
		return &Backend{
			account:   c.Azure.Account,
			container: c.Azure.Container,
		}, nil
	})
}
