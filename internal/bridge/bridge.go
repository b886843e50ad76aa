package bridge

import (
	"time"

	"github.com/rs/zerolog"

	"genaid/internal/artifact"
	"genaid/internal/events"
	"genaid/internal/lane"
	"genaid/internal/registry"
	"genaid/internal/session"
	"genaid/pkg/types"
)

// Bridge maps host calls onto the artifact store and session manager through
// the worker lane.
type Bridge struct {
	store     *artifact.Store
	sessions  *session.Manager
	lane      *lane.Lane
	catalog   *registry.Registry
	publisher events.Publisher
	log       zerolog.Logger
	startTime time.Time
}

// Config wires a Bridge. Store, Sessions and Lane are required.
type Config struct {
	Store     *artifact.Store
	Sessions  *session.Manager
	Lane      *lane.Lane
	Catalog   *registry.Registry
	Publisher events.Publisher
	Logger    *zerolog.Logger
}

// New constructs a Bridge.
func New(cfg Config) *Bridge {
	b := &Bridge{
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		lane:      cfg.Lane,
		catalog:   cfg.Catalog,
		publisher: events.OrNop(cfg.Publisher),
		log:       zerolog.Nop(),
		startTime: time.Now(),
	}
	if cfg.Logger != nil {
		b.log = cfg.Logger.With().Str("component", "bridge").Logger()
	}
	return b
}

// Ready reports whether a session is Ready for generation.
func (b *Bridge) Ready() bool { return b.sessions.Ready() }

// ListModels returns the catalog with local presence resolved per entry.
func (b *Bridge) ListModels() []types.CatalogModel {
	entries := b.catalog.Entries()
	out := make([]types.CatalogModel, 0, len(entries))
	for _, e := range entries {
		ok, p := b.store.Exists(e.FileName)
		m := types.CatalogModel{
			ID:           e.ID,
			Name:         e.Name,
			Size:         e.Size,
			Quantization: e.Quantization,
			FileName:     e.FileName,
			URL:          e.URL,
			Downloaded:   ok,
		}
		if ok {
			m.Path = p
		}
		out = append(out, m)
	}
	return out
}

// Status builds a status report of the session and the worker lane.
func (b *Bridge) Status() types.StatusResponse {
	snap := b.sessions.Snapshot()
	return types.StatusResponse{
		State:          string(snap.State),
		ModelPath:      snap.ModelPath,
		LastError:      snap.Reason,
		Options:        generationOptions(snap.Options),
		QueueDepth:     b.lane.Len(),
		Running:        b.lane.Running(),
		LoadsTotal:     snap.Loads,
		LlamaBuilt:     session.LlamaBuilt(),
		StorageDir:     b.store.Root(),
		StoredFiles:    b.storedFiles(),
		UptimeSeconds:  int64(time.Since(b.startTime) / time.Second),
		ServerTimeUnix: time.Now().Unix(),
	}
}

// storedFiles lists the storage root, flagging files no catalog entry names.
// A listing failure is logged and reported as no files.
func (b *Bridge) storedFiles() []types.StoredFile {
	arts, err := b.store.List()
	if err != nil {
		b.log.Warn().Err(err).Str("root", b.store.Root()).Msg("list storage")
		return []types.StoredFile{}
	}
	known := make(map[string]bool)
	for _, e := range b.catalog.Entries() {
		known[e.FileName] = true
	}
	out := make([]types.StoredFile, 0, len(arts))
	for _, a := range arts {
		out = append(out, types.StoredFile{
			FileName:     a.FileName,
			SizeBytes:    a.Size,
			ModifiedUnix: a.ModTime.Unix(),
			InCatalog:    known[a.FileName],
		})
	}
	return out
}

func generationOptions(o session.Options) types.GenerationOptions {
	return types.GenerationOptions{
		MaxTokens:   o.MaxTokens,
		TopK:        o.TopK,
		Temperature: o.Temperature,
		RandomSeed:  o.RandomSeed,
	}
}
