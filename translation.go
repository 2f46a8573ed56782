// Package translation manages a store of canonical texts and their machine
// or human translations. A batch pipeline moves work through four engines:
// diff finds untranslated texts, dispatch hands them to a provider,
// reconciliation collects asynchronous results, and publish promotes
// finished translations back into the store.
package translation

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/commands"
	"github.com/revenuewire/translation/internal/diff"
	"github.com/revenuewire/translation/internal/dispatch"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/languages"
	"github.com/revenuewire/translation/internal/logging"
	"github.com/revenuewire/translation/internal/logging/gologger"
	"github.com/revenuewire/translation/internal/provider"
	"github.com/revenuewire/translation/internal/provider/gct"
	"github.com/revenuewire/translation/internal/provider/oht"
	"github.com/revenuewire/translation/internal/publish"
	"github.com/revenuewire/translation/internal/queue"
	"github.com/revenuewire/translation/internal/reconcile"
	"github.com/revenuewire/translation/internal/storage"
)

// Re-exported domain identifiers so hosts never import internal packages.
const (
	ProviderOHT = domain.ProviderOHT
	ProviderGCT = domain.ProviderGCT
)

// Provider identifies a translation vendor.
type Provider = domain.Provider

// DiffRequest describes one diff sweep.
type DiffRequest = diff.Request

// DiffResult reports what a diff sweep accomplished.
type DiffResult = diff.Result

// PublishResult reports what a publish sweep accomplished.
type PublishResult = publish.Result

// ReconcileReport describes the outcome of reconciling one project.
type ReconcileReport = reconcile.Report

// Command messages accepted by the message-driven entry points.
type (
	DiffCommand      = commands.DiffCommand
	DispatchCommand  = commands.DispatchCommand
	ReconcileCommand = commands.ReconcileCommand
	PublishCommand   = commands.PublishCommand
)

// Commands groups the go-command handlers for the four pipeline verbs. Hosts
// register them on a dispatcher or invoke Execute directly.
type Commands struct {
	Diff      *commands.DiffHandler
	Dispatch  *commands.DispatchHandler
	Reconcile *commands.ReconcileHandler
	Publish   *commands.PublishHandler
}

// DatabaseConfig selects the backing store. An empty DSN keeps everything
// in memory, which suits tests and short-lived tooling.
type DatabaseConfig struct {
	DSN string
}

// LoggingConfig configures the go-logger provider.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// OHTConfig carries OneHourTranslation credentials and project metadata.
type OHTConfig struct {
	PublicKey   string
	SecretKey   string
	Sandbox     bool
	Note        string
	Expertise   string
	Tag         string
	CallbackURL string
}

// GCTConfig carries Google Cloud Translation credentials.
type GCTConfig struct {
	APIKey    string
	ChunkSize int
}

// ProvidersConfig enables vendor adapters. A provider with empty
// credentials is simply not registered.
type ProvidersConfig struct {
	OHT OHTConfig
	GCT GCTConfig
}

// Config is the single knob surface for the module.
type Config struct {
	Database  DatabaseConfig
	Logging   LoggingConfig
	Providers ProvidersConfig

	// SourceLanguage is the language canonical texts are written in.
	SourceLanguage string

	// BatchLimit bounds project size during diff sweeps.
	BatchLimit int

	// LookupCacheTTLSeconds bounds how long runtime lookups cache a
	// translated text. Zero disables expiry.
	LookupCacheTTLSeconds int
}

// DefaultConfig returns a config with the stock defaults filled in.
func DefaultConfig() Config {
	return Config{
		SourceLanguage: catalog.DefaultLanguage,
		BatchLimit:     diff.DefaultBatchLimit,
		Logging:        LoggingConfig{Level: "info", Format: "console"},
	}
}

// Validate rejects configs the module cannot run with.
func (c Config) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.BatchLimit, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.SourceLanguage != "" {
		if _, ok := languages.Lookup(c.SourceLanguage); !ok {
			return fmt.Errorf("translation: unsupported source language %q", c.SourceLanguage)
		}
	}
	return nil
}

// Option overrides module wiring, mostly for tests and embedders that bring
// their own implementations.
type Option func(*Module)

// WithLoggerProvider plugs in an external logging provider.
func WithLoggerProvider(p logging.Provider) Option {
	return func(m *Module) { m.logProvider = p }
}

// WithUnitRepository replaces the content store implementation.
func WithUnitRepository(repo catalog.Repository) Option {
	return func(m *Module) { m.units = repo }
}

// WithQueueRepositories replaces the queue store implementations.
func WithQueueRepositories(items queue.ItemRepository, projects queue.ProjectRepository) Option {
	return func(m *Module) {
		m.items = items
		m.projects = projects
	}
}

// WithTranslators registers adapters directly instead of building them from
// provider credentials.
func WithTranslators(translators ...provider.Translator) Option {
	return func(m *Module) { m.translators = append(m.translators, translators...) }
}

// Module is the top level runtime façade.
type Module struct {
	cfg         Config
	db          *bun.DB
	logProvider logging.Provider

	units    catalog.Repository
	items    queue.ItemRepository
	projects queue.ProjectRepository

	translators []provider.Translator
	registry    *provider.Registry

	diff      diff.Service
	dispatch  dispatch.Service
	reconcile reconcile.Service
	publish   publish.Service
	lookup    *Lookup
	commands  Commands
}

// New constructs the module. Construction fails on invalid configuration or
// unreachable vendors; a valid module is fully wired and ready to run.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = catalog.DefaultLanguage
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = diff.DefaultBatchLimit
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.logProvider == nil {
		logProvider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		m.logProvider = logProvider
	}

	if err := m.wireStores(); err != nil {
		return nil, err
	}
	if err := m.wireProviders(ctx); err != nil {
		return nil, err
	}

	m.diff = diff.NewService(m.units, m.items, m.projects,
		diff.WithLogger(logging.DiffLogger(m.logProvider)),
		diff.WithSourceLanguage(cfg.SourceLanguage),
	)
	m.dispatch = dispatch.NewService(m.units, m.items, m.projects, m.registry,
		dispatch.WithLogger(logging.DispatchLogger(m.logProvider)),
		dispatch.WithSourceLanguage(cfg.SourceLanguage),
	)
	m.reconcile = reconcile.NewService(m.items, m.projects, m.registry,
		reconcile.WithLogger(logging.ReconcileLogger(m.logProvider)),
	)
	m.publish = publish.NewService(m.units, m.items,
		publish.WithLogger(logging.PublishLogger(m.logProvider)),
	)
	m.lookup = newLookup(m.units, cfg, logging.LookupLogger(m.logProvider))

	cmdLogger := logging.CommandsLogger(m.logProvider)
	m.commands = Commands{
		Diff:      commands.NewDiffHandler(m.diff, cmdLogger),
		Dispatch:  commands.NewDispatchHandler(m.dispatch, cmdLogger),
		Reconcile: commands.NewReconcileHandler(m.reconcile, cmdLogger),
		Publish:   commands.NewPublishHandler(m.publish, cmdLogger),
	}

	return m, nil
}

func (m *Module) wireStores() error {
	if m.units != nil && m.items != nil && m.projects != nil {
		return nil
	}

	if m.cfg.Database.DSN == "" {
		if m.units == nil {
			m.units = catalog.NewMemoryRepository()
		}
		if m.items == nil {
			m.items = queue.NewMemoryItemRepository()
		}
		if m.projects == nil {
			m.projects = queue.NewMemoryProjectRepository()
		}
		return nil
	}

	db, err := storage.Connect(m.cfg.Database.DSN)
	if err != nil {
		return err
	}
	m.db = db
	if m.units == nil {
		m.units = catalog.NewBunRepository(db)
	}
	if m.items == nil {
		m.items = queue.NewBunItemRepository(db)
	}
	if m.projects == nil {
		m.projects = queue.NewBunProjectRepository(db)
	}
	return nil
}

func (m *Module) wireProviders(ctx context.Context) error {
	if m.cfg.Providers.OHT.PublicKey != "" || m.cfg.Providers.OHT.SecretKey != "" {
		client, err := oht.New(oht.Config{
			PublicKey:   m.cfg.Providers.OHT.PublicKey,
			SecretKey:   m.cfg.Providers.OHT.SecretKey,
			Sandbox:     m.cfg.Providers.OHT.Sandbox,
			Note:        m.cfg.Providers.OHT.Note,
			Expertise:   m.cfg.Providers.OHT.Expertise,
			Tag:         m.cfg.Providers.OHT.Tag,
			CallbackURL: m.cfg.Providers.OHT.CallbackURL,
		})
		if err != nil {
			return err
		}
		m.translators = append(m.translators, client)
	}

	if m.cfg.Providers.GCT.APIKey != "" {
		client, err := gct.New(ctx, gct.Config{
			APIKey:    m.cfg.Providers.GCT.APIKey,
			ChunkSize: m.cfg.Providers.GCT.ChunkSize,
		})
		if err != nil {
			return err
		}
		m.translators = append(m.translators, client)
	}

	m.registry = provider.NewRegistry(m.translators...)
	return nil
}

// InitSchema provisions database tables. It is a no-op for in-memory stores
// and safe to run repeatedly.
func (m *Module) InitSchema(ctx context.Context) error {
	if m.db == nil {
		return nil
	}
	return storage.CreateTables(ctx, m.db)
}

// Close releases the database handle.
func (m *Module) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Diff scans for untranslated texts and batches them into projects.
func (m *Module) Diff(ctx context.Context, req DiffRequest) (*DiffResult, error) {
	if req.BatchLimit <= 0 {
		req.BatchLimit = m.cfg.BatchLimit
	}
	return m.diff.Diff(ctx, req)
}

// Dispatch submits one pending project to its provider.
func (m *Module) Dispatch(ctx context.Context, projectID string) error {
	return m.dispatch.Dispatch(ctx, projectID)
}

// DispatchPending submits every pending project.
func (m *Module) DispatchPending(ctx context.Context) error {
	return m.dispatch.DispatchPending(ctx)
}

// Reconcile polls one in-flight project and commits finished results.
func (m *Module) Reconcile(ctx context.Context, projectID string) (*ReconcileReport, error) {
	return m.reconcile.Reconcile(ctx, projectID)
}

// ReconcileInProgress polls every in-flight project.
func (m *Module) ReconcileInProgress(ctx context.Context) ([]*ReconcileReport, error) {
	return m.reconcile.ReconcileInProgress(ctx)
}

// Publish promotes ready queue items into translated units.
func (m *Module) Publish(ctx context.Context) (*PublishResult, error) {
	return m.publish.Publish(ctx)
}

// Lookup returns the runtime read-through lookup service.
func (m *Module) Lookup() *Lookup {
	return m.lookup
}

// Commands returns the message-driven entry points for the pipeline verbs.
func (m *Module) Commands() Commands {
	return m.commands
}

// Projects lists projects by status for operator tooling.
func (m *Module) Projects(ctx context.Context, statuses ...domain.ProjectStatus) ([]*queue.Project, error) {
	return m.projects.ByStatus(ctx, statuses...)
}
