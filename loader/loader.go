package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/erraggy/oascombine"
	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/oaserrors"
)

// MaxFileSize is the default limit on the size of a retrieved document.
const MaxFileSize = 10 * 1024 * 1024 // 10MB

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Loader retrieves raw documents by location.
//
// Implementations must be safe for concurrent use. A document returned by
// Load may be shared with other callers and must not be mutated.
type Loader interface {
	Load(ctx context.Context, location string) (*document.Node, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context, location string) (*document.Node, error)

// Load implements Loader.
func (f Func) Load(ctx context.Context, location string) (*document.Node, error) {
	return f(ctx, location)
}

// FileLoader reads documents from the local filesystem.
type FileLoader struct {
	// MaxSize limits the (decompressed) document size. Zero means MaxFileSize.
	MaxSize int64
	// Root, when set, confines loading to files under this directory.
	Root string
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, location string) (*document.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Root != "" {
		if err := checkWithinRoot(l.Root, location); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(location) //nolint:gosec // G304 - locations are user-provided source paths
	if err != nil {
		msg := "failed to read file"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "file not found"
		}
		return nil, &oaserrors.FetchError{Location: location, Message: msg, Cause: err}
	}
	defer func() { _ = f.Close() }()

	data, err := readLimited(f, limitOrDefault(l.MaxSize), location)
	if err != nil {
		return nil, err
	}
	return decodeContent(data, location, l.MaxSize)
}

func checkWithinRoot(root, location string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("loader: failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(location)
	if err != nil {
		return fmt.Errorf("loader: failed to resolve file path: %w", err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &oaserrors.FetchError{Location: location, Message: "path escapes the allowed directory " + root}
	}
	return nil
}

// HTTPLoader fetches documents over HTTP(S).
type HTTPLoader struct {
	// Client is the HTTP client; nil means a client with DefaultTimeout.
	Client *http.Client
	// UserAgent overrides the User-Agent header.
	UserAgent string
	// MaxSize limits the (decompressed) document size. Zero means MaxFileSize.
	MaxSize int64
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, location string) (*document.Node, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, &oaserrors.FetchError{Location: location, Message: "invalid URL", Cause: err}
	}
	userAgent := l.UserAgent
	if userAgent == "" {
		userAgent = oascombine.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req) //nolint:gosec // G107 - URL is a user-provided source location
	if err != nil {
		return nil, &oaserrors.FetchError{Location: location, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &oaserrors.FetchError{Location: location, StatusCode: resp.StatusCode, Message: resp.Status}
	}

	data, err := readLimited(resp.Body, limitOrDefault(l.MaxSize), location)
	if err != nil {
		return nil, err
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && !strings.EqualFold(enc, "identity") {
		// net/http only decodes gzip it asked for itself.
		if data, err = decompressEncoding(enc, data, location, limitOrDefault(l.MaxSize)); err != nil {
			return nil, err
		}
	}
	return decodeContent(data, location, l.MaxSize)
}

// MemoryLoader serves documents from memory. It is used for inline content
// and in tests.
type MemoryLoader struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryLoader returns a MemoryLoader holding docs keyed by location.
func NewMemoryLoader(docs map[string][]byte) *MemoryLoader {
	m := &MemoryLoader{docs: make(map[string][]byte, len(docs))}
	for loc, data := range docs {
		m.docs[Canonical(loc)] = data
	}
	return m
}

// Add stores data under location.
func (m *MemoryLoader) Add(location string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[Canonical(location)] = data
}

// Has reports whether location is held in memory.
func (m *MemoryLoader) Has(location string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[Canonical(location)]
	return ok
}

// Load implements Loader.
func (m *MemoryLoader) Load(ctx context.Context, location string) (*document.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	data, ok := m.docs[Canonical(location)]
	m.mu.RUnlock()
	if !ok {
		return nil, &oaserrors.FetchError{Location: location, Message: "no such in-memory document"}
	}
	return decodeContent(data, location, 0)
}

// Default dispatches URLs to an HTTPLoader and everything else to a
// FileLoader. Locations held by the optional MemoryLoader take precedence.
type Default struct {
	Memory *MemoryLoader
	HTTP   *HTTPLoader
	File   *FileLoader
	Logger Logger
}

// Option configures a Default loader.
type Option func(*Default)

// WithHTTPClient sets the HTTP client used for URLs.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Default) { d.HTTP.Client = client }
}

// WithUserAgent sets the User-Agent header for HTTP requests.
func WithUserAgent(ua string) Option {
	return func(d *Default) { d.HTTP.UserAgent = ua }
}

// WithMaxSize limits the size of every retrieved document.
func WithMaxSize(n int64) Option {
	return func(d *Default) {
		d.HTTP.MaxSize = n
		d.File.MaxSize = n
	}
}

// WithRoot confines file loading to dir.
func WithRoot(dir string) Option {
	return func(d *Default) { d.File.Root = dir }
}

// WithMemory serves the given documents from memory.
func WithMemory(docs map[string][]byte) Option {
	return func(d *Default) { d.Memory = NewMemoryLoader(docs) }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(d *Default) {
		if l != nil {
			d.Logger = l
		}
	}
}

// New returns the default loader.
func New(opts ...Option) *Default {
	d := &Default{
		HTTP:   &HTTPLoader{},
		File:   &FileLoader{},
		Logger: NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load implements Loader.
func (d *Default) Load(ctx context.Context, location string) (*document.Node, error) {
	start := time.Now()
	var (
		doc    *document.Node
		err    error
		source string
	)
	switch {
	case d.Memory != nil && d.Memory.Has(location):
		source = "memory"
		doc, err = d.Memory.Load(ctx, location)
	case IsURL(location):
		source = "http"
		doc, err = d.HTTP.Load(ctx, location)
	default:
		source = "file"
		doc, err = d.File.Load(ctx, location)
	}
	if err != nil {
		d.Logger.Debug("load failed", "location", location, "source", source, "error", err)
		return nil, err
	}
	d.Logger.Debug("loaded document", "location", location, "source", source, "elapsed", time.Since(start))
	return doc, nil
}

var (
	_ Loader = (*FileLoader)(nil)
	_ Loader = (*HTTPLoader)(nil)
	_ Loader = (*MemoryLoader)(nil)
	_ Loader = (*Default)(nil)
	_ Loader = Func(nil)
)

func limitOrDefault(n int64) int64 {
	if n <= 0 {
		return MaxFileSize
	}
	return n
}

func readLimited(r io.Reader, limit int64, location string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &oaserrors.FetchError{Location: location, Message: "failed to read content", Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        limit,
			Message:      "document " + location + " is too large",
		}
	}
	return data, nil
}

func decodeContent(data []byte, location string, maxSize int64) (*document.Node, error) {
	data, err := Decompress(data, location, limitOrDefault(maxSize))
	if err != nil {
		return nil, err
	}
	return document.Decode(data, location)
}
