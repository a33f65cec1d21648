// Package hooks is the admin host's typed extension points. Plugins register
// handlers at startup; screens and endpoints run them per request.
package hooks

import (
	"context"
	"fmt"
	"html/template"
	"net/url"
	"sync"

	"github.com/lk2023060901/media-attached-filter/internal/media/types"
)

// Screen identifies the admin screen being rendered
type Screen struct {
	ID     string
	UserID string
	Params url.Values
}

// Asset kinds
const (
	AssetStyle  = "style"
	AssetScript = "script"
)

// Asset is a stylesheet or script a plugin enqueues on a screen
type Asset struct {
	Handle  string
	Kind    string
	URL     string
	Version string
	// Config is embedded next to the asset as JSON under ConfigID
	ConfigID string
	Config   any
}

// AjaxRequest is a dispatched admin AJAX call
type AjaxRequest struct {
	Action string
	UserID string
	Form   url.Values
}

type (
	// FilterControlsFunc renders extra listing filter controls for a screen
	FilterControlsFunc func(ctx context.Context, screen *Screen) (template.HTML, error)
	// EnqueueAssetsFunc returns the assets a screen needs
	EnqueueAssetsFunc func(ctx context.Context, screen *Screen) ([]Asset, error)
	// PreListingQueryFunc mutates a listing query before it runs
	PreListingQueryFunc func(ctx context.Context, query *types.ListingQuery) error
	// AjaxFunc answers an AJAX action with a JSON-encodable body
	AjaxFunc func(ctx context.Context, req *AjaxRequest) (any, error)
)

// AjaxAction is a registered AJAX action
type AjaxAction struct {
	Name string
	// NonceAction is the anti-forgery action verified before dispatch;
	// empty means the action takes no nonce
	NonceAction string
	Handler     AjaxFunc
}

// Registry holds the registered handlers. It is written at startup and read
// concurrently afterwards.
type Registry struct {
	mu       sync.RWMutex
	controls []FilterControlsFunc
	assets   []EnqueueAssetsFunc
	preQuery []PreListingQueryFunc
	ajax     map[string]AjaxAction
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{ajax: make(map[string]AjaxAction)}
}

// OnFilterControls registers a filter controls renderer
func (r *Registry) OnFilterControls(fn FilterControlsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls = append(r.controls, fn)
}

// OnEnqueueAssets registers an asset provider
func (r *Registry) OnEnqueueAssets(fn EnqueueAssetsFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = append(r.assets, fn)
}

// OnPreListingQuery registers a listing query mutator
func (r *Registry) OnPreListingQuery(fn PreListingQueryFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preQuery = append(r.preQuery, fn)
}

// OnAjax registers an AJAX action. Registering a name twice is an error.
func (r *Registry) OnAjax(name, nonceAction string, fn AjaxFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("ajax action name and handler are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ajax[name]; exists {
		return fmt.Errorf("ajax action %q already registered", name)
	}
	r.ajax[name] = AjaxAction{Name: name, NonceAction: nonceAction, Handler: fn}
	return nil
}

// RenderFilterControls concatenates the output of every controls renderer
func (r *Registry) RenderFilterControls(ctx context.Context, screen *Screen) (template.HTML, error) {
	r.mu.RLock()
	fns := r.controls
	r.mu.RUnlock()

	var out template.HTML
	for _, fn := range fns {
		html, err := fn(ctx, screen)
		if err != nil {
			return "", err
		}
		out += html
	}
	return out, nil
}

// EnqueueAssets collects assets from every provider in registration order
func (r *Registry) EnqueueAssets(ctx context.Context, screen *Screen) ([]Asset, error) {
	r.mu.RLock()
	fns := r.assets
	r.mu.RUnlock()

	var out []Asset
	for _, fn := range fns {
		assets, err := fn(ctx, screen)
		if err != nil {
			return nil, err
		}
		out = append(out, assets...)
	}
	return out, nil
}

// RunPreListingQuery runs the mutators in order, stopping at the first error
func (r *Registry) RunPreListingQuery(ctx context.Context, query *types.ListingQuery) error {
	r.mu.RLock()
	fns := r.preQuery
	r.mu.RUnlock()

	for _, fn := range fns {
		if err := fn(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// Ajax looks up an AJAX action by name
func (r *Registry) Ajax(name string) (AjaxAction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.ajax[name]
	return action, ok
}
