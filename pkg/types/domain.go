package types

// CatalogModel is a catalog entry with its local presence.
type CatalogModel struct {
	// Stable identifier for the model.
	// example: tiny-garden-270m
	ID string `json:"id" example:"tiny-garden-270m"`
	// Human-friendly name.
	// example: TinyGarden-270M (CPU)
	Name string `json:"name" example:"TinyGarden-270M (CPU)"`
	// Advertised download size.
	// example: 270MB
	Size string `json:"size,omitempty" example:"270MB"`
	// Quantization level or variant string.
	// example: INT4
	Quantization string `json:"quantization,omitempty" example:"INT4"`
	// File name under the storage root.
	// example: tiny_garden.litertlm
	FileName string `json:"fileName" example:"tiny_garden.litertlm"`
	// Source URL used when downloading by id.
	URL string `json:"url"`
	// Whether the file is present locally.
	// example: true
	Downloaded bool `json:"downloaded" example:"true"`
	// Local path, set when downloaded.
	Path string `json:"path,omitempty"`
}

// GenerationOptions mirrors the fixed options every session is built with.
type GenerationOptions struct {
	// example: 1024
	MaxTokens int `json:"maxTokens" example:"1024"`
	// example: 40
	TopK int `json:"topK" example:"40"`
	// example: 0.8
	Temperature float32 `json:"temperature" example:"0.8"`
	// example: 101
	RandomSeed int `json:"randomSeed" example:"101"`
}

// StoredFile is a model file present in the storage root.
type StoredFile struct {
	// example: tiny_garden.litertlm
	FileName string `json:"fileName" example:"tiny_garden.litertlm"`
	// example: 283115520
	SizeBytes int64 `json:"sizeBytes" example:"283115520"`
	// Last modification time in unix seconds.
	// example: 1700000000
	ModifiedUnix int64 `json:"modifiedUnix" example:"1700000000"`
	// Whether a catalog entry names this file.
	InCatalog bool `json:"inCatalog"`
}
