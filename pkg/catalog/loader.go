package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/gateway/functions"
)

// DefaultMaxFileSize bounds the size of a single definition file.
const DefaultMaxFileSize int64 = 1 << 20

// Loader reads api definitions and builds them into apis.
type Loader struct {
	registry    *functions.Registry
	deps        functions.Deps
	validate    *validator.Validate
	logger      *slog.Logger
	maxFileSize int64
}

// NewLoader creates a loader building functions from registry. A nil
// registry uses the built-in functions.
func NewLoader(registry *functions.Registry, deps functions.Deps, logger *slog.Logger) *Loader {
	if registry == nil {
		registry = functions.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Logger == nil {
		deps.Logger = logger
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Loader{
		registry:    registry,
		deps:        deps,
		validate:    v,
		logger:      logger,
		maxFileSize: DefaultMaxFileSize,
	}
}

// LoadFile reads and builds a single definition file.
func (l *Loader) LoadFile(path string) (*gateway.API, error) {
	def, err := l.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Build(def)
}

// ReadFile reads and validates a definition file without building it.
func (l *Loader) ReadFile(path string) (*Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		msg := "failed to access file"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "file not found"
		}
		return nil, &LoadError{FilePath: path, Message: msg, Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > l.maxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.maxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	return l.Parse(path, data)
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

// Parse decodes and validates a definition. path is used in errors only.
func (l *Loader) Parse(path string, data []byte) (*Definition, error) {
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{FilePath: path, Message: "empty definition", Cause: err}
		}
		pe := &ParseError{FilePath: path, Message: err.Error(), Cause: err}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			pe.Line, _ = strconv.Atoi(m[1])
		}
		return nil, pe
	}
	def.File = path

	if err := l.validate.Struct(&def); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, &ValidationError{
				FilePath:  path,
				API:       def.Name,
				FieldPath: strings.TrimPrefix(fe.Namespace(), "Definition."),
				Message:   fmt.Sprintf("failed on %q", tagDescription(fe)),
				Cause:     err,
			}
		}
		return nil, &ValidationError{FilePath: path, API: def.Name, Message: "invalid definition", Cause: err}
	}
	return &def, nil
}

func tagDescription(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// Build creates the api of def.
func (l *Loader) Build(def *Definition) (*gateway.API, error) {
	root := gateway.NewTryFunctions(def.Name)
	for i, n := range def.Functions {
		fn, err := l.build(def, n, fmt.Sprintf("functions[%d]", i))
		if err != nil {
			return nil, err
		}
		root.AddTry(fn)
	}
	for i, n := range def.OnError {
		fn, err := l.build(def, n, fmt.Sprintf("on_error[%d]", i))
		if err != nil {
			return nil, err
		}
		root.AddOnError(fn)
	}
	return gateway.NewAPI(def.Name, def.ContextRoot, root), nil
}

func (l *Loader) build(def *Definition, n Node, path string) (gateway.Function, error) {
	invalid := func(msg string, cause error) error {
		return &ValidationError{
			FilePath:  def.File,
			API:       def.Name,
			FieldPath: path,
			Line:      n.Line,
			Message:   msg,
			Cause:     cause,
		}
	}

	name := n.Name
	if name == "" {
		name = n.Type
	}

	var fn gateway.Function
	if n.IsCompound() {
		if n.Type != TypeTry && len(n.OnError) > 0 {
			return nil, invalid("on_error is only allowed for type try", nil)
		}
		children := make([]gateway.Function, 0, len(n.Functions))
		for i, c := range n.Functions {
			child, err := l.build(def, c, fmt.Sprintf("%s.functions[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		switch n.Type {
		case TypeAll:
			fn = gateway.NewAllMustSucceed(name, children...)
		case TypeAny:
			fn = gateway.NewAtLeastOneMustSucceed(name, children...)
		case TypeTry:
			try := gateway.NewTryFunctions(name, children...)
			for i, c := range n.OnError {
				child, err := l.build(def, c, fmt.Sprintf("%s.on_error[%d]", path, i))
				if err != nil {
					return nil, err
				}
				try.AddOnError(child)
			}
			fn = try
		}
	} else {
		if len(n.Functions) > 0 || len(n.OnError) > 0 {
			return nil, invalid(fmt.Sprintf("type %s does not take child functions", n.Type), nil)
		}
		if !l.registry.Has(n.Type) {
			return nil, invalid(n.Type, ErrUnknownFunction)
		}
		leaf, err := l.registry.Build(n.Type, name, n.Config, l.deps)
		if err != nil {
			return nil, invalid("invalid configuration", err)
		}
		fn = leaf
	}

	if n.Next != nil {
		next, err := l.build(def, *n.Next, path+".next")
		if err != nil {
			return nil, err
		}
		fn = gateway.Chain(fn, next)
	}
	return fn, nil
}

// LoadDir loads every .yaml and .yml file below dir. Files are loaded in
// lexical order; all errors are reported together and no apis are
// returned when any file fails.
func (l *Loader) LoadDir(dir string) ([]*gateway.API, error) {
	info, err := os.Stat(dir)
	if err != nil {
		msg := "failed to access directory"
		if errors.Is(err, fs.ErrNotExist) {
			msg = "directory not found"
		}
		return nil, &LoadError{FilePath: dir, Message: msg, Cause: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isDefinitionFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}
	sort.Strings(files)

	var (
		apis  []*gateway.API
		errs  []error
		roots = make(map[string]string)
	)
	for _, f := range files {
		api, err := l.LoadFile(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if other, ok := roots[api.ContextRoot()]; ok {
			errs = append(errs, fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateContextRoot, api.ContextRoot(), other, f))
			continue
		}
		roots[api.ContextRoot()] = f
		apis = append(apis, api)
		l.logger.Debug("loaded api definition", "file", f, "api", api.Name(), "context_root", api.ContextRoot())
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	l.logger.Info("loaded api definitions", "dir", dir, "count", len(apis))
	return apis, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
