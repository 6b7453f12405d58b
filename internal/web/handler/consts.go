package handler

import "github.com/pkg/errors"

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the prefix of the JSON API.
	APIPath = "/api/v1"

	// AccessDeniedPath is the landing page for redirected denials.
	AccessDeniedPath = RootPath + "access-denied"

	// ErrNilDepsFatalLogMsg is used if app or one of the dependencies is nil.
	ErrNilDepsFatalLogMsg = "app or handler dependencies are nil"
)

// ErrNilDeps is returned by Init when app or a dependency is missing.
var ErrNilDeps = errors.New(ErrNilDepsFatalLogMsg)
