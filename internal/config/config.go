package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/routetree/internal/errors"
	"github.com/vango-dev/routetree/pkg/router"
)

// ConfigFileName is the default route map file name.
const ConfigFileName = "routes.json"

// FileNames are the route map names Load looks for, in order.
var FileNames = []string{"routes.json", "routes.yaml", "routes.yml", "routes.toml"}

// Format is a route map encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(name string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Config is a route map.
type Config struct {
	// Anchor prefixes generated URLs. Defaults to "#".
	Anchor string `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor,omitempty"`

	// Canonicalize cleans paths before matching.
	Canonicalize bool `json:"canonicalize,omitempty" yaml:"canonicalize,omitempty" toml:"canonicalize,omitempty"`

	// Routes are the top-level routes.
	Routes []RouteConfig `json:"routes" yaml:"routes" toml:"routes"`

	// configPath stores where the map was loaded from.
	configPath string
}

// RouteConfig declares one route.
type RouteConfig struct {
	Name string `json:"name" yaml:"name" toml:"name"`

	// Path is the own path template. nil means "not given", which is
	// different from an explicit "".
	Path *string `json:"path,omitempty" yaml:"path,omitempty" toml:"path"`

	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	Routes  []RouteConfig  `json:"routes,omitempty" yaml:"routes,omitempty" toml:"routes,omitempty"`
}

// New creates an empty route map with default settings.
func New() *Config {
	return &Config{
		Anchor: router.DefaultAnchor,
	}
}

// Load reads the first route map found in dir (see FileNames).
func Load(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return nil, errors.New(errors.CodeConfigNotFound).
			WithDetail("No route map found in " + dir).
			WithSuggestion("Create " + ConfigFileName + " or pass --routes")
	}
	return LoadFile(path)
}

// Find returns the first route map file in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadFile reads a route map. The format follows the file extension.
func LoadFile(path string) (*Config, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.New(errors.CodeConfigUnsupported).
			WithDetail(filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Location != nil {
			e.WithLocation(path, e.Location.Line, e.Location.Column)
		}
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a route map.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := New()

	var err error
	switch format {
	case FormatJSON:
		err = decodeJSON(data, cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	case FormatTOML:
		_, err = toml.Decode(string(data), cfg)
	default:
		return nil, errors.New(errors.CodeConfigUnsupported).WithDetail(string(format))
	}
	if err != nil {
		perr := errors.New(errors.CodeConfigInvalid).
			WithDetail("Failed to parse " + string(format) + ": " + err.Error()).
			WithSuggestion("Check that the route map is valid " + strings.ToUpper(string(format)))
		if line, col, ok := errorPosition(data, err); ok {
			perr.Location = &errors.Location{Line: line, Column: col}
		}
		return nil, perr
	}

	cfg.applyDefaults()
	return cfg, nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// errorPosition extracts the line and column of a decode error.
func errorPosition(data []byte, err error) (line, col int, ok bool) {
	switch e := err.(type) {
	case *json.SyntaxError:
		line, col = offsetPosition(data, e.Offset)
		return line, col, true
	case *json.UnmarshalTypeError:
		line, col = offsetPosition(data, e.Offset)
		return line, col, true
	case toml.ParseError:
		return e.Position.Line, 0, true
	case *toml.ParseError:
		return e.Position.Line, 0, true
	}
	return 0, 0, false
}

func offsetPosition(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	col = int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// Save writes the route map back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no route map path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the route map in the format implied by path.
func (c *Config) SaveTo(path string) error {
	format, ok := FormatOf(path)
	if !ok {
		return errors.New(errors.CodeConfigUnsupported).WithDetail(filepath.Base(path))
	}

	data, err := c.Encode(format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Encode renders the route map.
func (c *Config) Encode(format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		var data []byte
		data, err = json.MarshalIndent(c, "", "  ")
		buf.Write(data)
		buf.WriteByte('\n')
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(c)
		if err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(&buf).Encode(c)
	default:
		return nil, errors.New(errors.CodeConfigUnsupported).WithDetail(string(format))
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	return buf.Bytes(), nil
}

// Path returns where the route map was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Anchor == "" {
		c.Anchor = router.DefaultAnchor
	}
}

// Validate checks the route map by building it.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("route map declares no routes")
	}
	if _, _, err := router.Build(c.Define()); err != nil {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(err.Error()).
			Wrap(err)
	}
	return nil
}

// Define returns a definition function declaring the map's routes.
func (c *Config) Define() router.DefineFunc {
	return defineRoutes(c.Routes)
}

func defineRoutes(routes []RouteConfig) router.DefineFunc {
	return func(b *router.Builder) {
		for _, rc := range routes {
			b.Route(rc.Name, rc.options()...)
		}
	}
}

func (rc RouteConfig) options() []router.RouteOption {
	var opts []router.RouteOption
	if len(rc.Options) > 0 {
		opts = append(opts, router.Options(rc.Options))
	}
	if rc.Path != nil {
		opts = append(opts, router.Path(*rc.Path))
	}
	if len(rc.Routes) > 0 {
		opts = append(opts, router.Children(defineRoutes(rc.Routes)))
	}
	return opts
}

// RouterOptions returns the router settings of the map.
func (c *Config) RouterOptions() []router.Option {
	var opts []router.Option
	if c.Anchor != "" {
		opts = append(opts, router.WithAnchor(c.Anchor))
	}
	if c.Canonicalize {
		opts = append(opts, router.WithCanonicalPaths())
	}
	return opts
}

// Router creates a listening router for the map. opts are applied after
// the map's own settings.
func (c *Config) Router(opts ...router.Option) (*router.Router, error) {
	r := router.New(append(c.RouterOptions(), opts...)...)
	if err := r.Map(c.Define()); err != nil {
		r.Destroy()
		return nil, err
	}
	if err := r.Listen(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}
