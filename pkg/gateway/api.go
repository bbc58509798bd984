package gateway

import (
	"strings"
)

// API is a named policy tree exposed at a context root.
type API struct {
	name        string
	contextRoot string
	root        *TryFunctions
}

// NewAPI creates an api. The context root is normalized to start with a
// slash and to have no trailing slash; a nil root becomes an empty
// TryFunctions, which always succeeds.
func NewAPI(name, contextRoot string, root *TryFunctions) *API {
	if root == nil {
		root = NewTryFunctions(name)
	}
	return &API{
		name:        name,
		contextRoot: NormalizeContextRoot(contextRoot),
		root:        root,
	}
}

func (a *API) Name() string        { return a.name }
func (a *API) ContextRoot() string { return a.contextRoot }
func (a *API) Root() *TryFunctions { return a.root }

// Matches reports whether path lies under the context root. Matching is
// segment aware: /shop matches /shop and /shop/orders but not /shopping.
func (a *API) Matches(path string) bool {
	if a.contextRoot == "/" {
		return true
	}
	if !strings.HasPrefix(path, a.contextRoot) {
		return false
	}
	return len(path) == len(a.contextRoot) || path[len(a.contextRoot)] == '/'
}

// NormalizeContextRoot returns root with a leading slash and without a
// trailing one.
func NormalizeContextRoot(root string) string {
	root = strings.TrimSpace(root)
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	if len(root) > 1 {
		root = strings.TrimRight(root, "/")
		if root == "" {
			root = "/"
		}
	}
	return root
}
