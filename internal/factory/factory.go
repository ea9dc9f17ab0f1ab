package factory

import (
	"fmt"

	"github.com/anime-shed/lineart-prep/internal/analyzer"
	"github.com/anime-shed/lineart-prep/internal/config"
	"github.com/anime-shed/lineart-prep/internal/storage"
)

// AnalyzerType represents different output analyzers
type AnalyzerType string

const (
	// StandardAnalyzer computes every metric, including edge sharpness
	StandardAnalyzer AnalyzerType = "standard"
	// FastAnalyzer skips the sharpness pass
	FastAnalyzer AnalyzerType = "fast"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for read-only HTTP(S) fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// AnalyzerFactory creates output analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(analyzerType AnalyzerType) (analyzer.LineArtAnalyzer, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	// CreateStore builds a read-write backend (local or azure)
	CreateStore(storageType StorageType) (storage.ImageStore, error)
	// CreateFetcher builds the read-only HTTP backend
	CreateFetcher() storage.ImageFetcher
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct{}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory() AnalyzerFactory {
	return &analyzerFactory{}
}

// CreateAnalyzer creates an analyzer based on the specified type
func (f *analyzerFactory) CreateAnalyzer(analyzerType AnalyzerType) (analyzer.LineArtAnalyzer, error) {
	switch analyzerType {
	case StandardAnalyzer:
		return analyzer.NewLineArtAnalyzer(analyzer.DefaultOptions()), nil
	case FastAnalyzer:
		return analyzer.NewLineArtAnalyzer(analyzer.FastOptions()), nil
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", analyzerType)
	}
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory reading credentials and
// timeouts from cfg
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStore creates a storage implementation based on the specified type
func (f *storageFactory) CreateStore(storageType StorageType) (storage.ImageStore, error) {
	switch storageType {
	case LocalStorage:
		return storage.NewLocalStore(), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_CONNECTION_STRING or AZURE_STORAGE_ACCOUNT/AZURE_STORAGE_KEY")
		}
		if f.cfg.AzureConnectionString != "" {
			return storage.NewAzureStorageFromConnectionString(f.cfg.AzureConnectionString)
		}
		return storage.NewAzureStorage(f.cfg.AzureAccountName, f.cfg.AzureAccountKey)
	case HTTPStorage:
		return nil, fmt.Errorf("http storage is read-only, use CreateFetcher")
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// CreateFetcher creates the HTTP fetcher with the configured timeout
func (f *storageFactory) CreateFetcher() storage.ImageFetcher {
	return storage.NewHTTPImageFetcher(storage.WithTimeout(f.cfg.ImageFetchTimeout))
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
