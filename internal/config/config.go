// Package config loads .mend.toml.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"mend/internal/correction"
	"mend/internal/format"
	"mend/internal/query"
)

// FileName is the configuration file searched for.
const FileName = ".mend.toml"

var (
	ErrUnknownKeys = errors.New("unknown configuration keys")
	ErrInvalid     = errors.New("invalid configuration")
)

type Format struct {
	Indent   string `toml:"indent" validate:"oneof=tab spaces auto"`
	TabWidth int    `toml:"tab_width" validate:"min=1,max=16"`
}

type Assist struct {
	Disabled     []string       `toml:"disabled" validate:"dive,ruleid"`
	MaxProposals int            `toml:"max_proposals" validate:"min=0"`
	Relevance    map[string]int `toml:"relevance" validate:"dive,keys,ruleid,endkeys"`
}

type Naming struct {
	FieldPrefix   string `toml:"field_prefix" validate:"omitempty,ident"`
	StaticPrefix  string `toml:"static_prefix" validate:"omitempty,ident"`
	LocalPrefix   string `toml:"local_prefix" validate:"omitempty,ident"`
	ConstantStyle string `toml:"constant_style" validate:"oneof=upper camel"`
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type Trace struct {
	Level  string `toml:"level" validate:"oneof=off error phase detail debug"`
	Output string `toml:"output"`
}

// Config mirrors the sections of .mend.toml.
type Config struct {
	Format Format `toml:"format"`
	Assist Assist `toml:"assist"`
	Naming Naming `toml:"naming"`
	Cache  Cache  `toml:"cache"`
	Trace  Trace  `toml:"trace"`

	// Path is the file the values came from; empty for defaults.
	Path string `toml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Format: Format{Indent: format.IndentAuto, TabWidth: 4},
		Naming: Naming{ConstantStyle: "upper"},
		Cache:  Cache{Enabled: false, Dir: ".mend-cache"},
		Trace:  Trace{Level: "off"},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("ruleid", validateRuleID)
	_ = validate.RegisterValidation("ident", validateIdent)
}

// rule ids are kebab-case
func validateRuleID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

func validateIdent(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKeys, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// Discover loads the first .mend.toml found from startDir upwards, or the
// defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v fails %q", tomlPath(fe.Namespace()), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// tomlPath turns "Config.Format.TabWidth" into "format.tab_width".
func tomlPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 && parts[0] == "Config" {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	key := ""
	if i := strings.IndexByte(s, '['); i >= 0 {
		s, key = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String() + key
}

// Settings converts the configuration into per-request correction settings.
// content is the file being edited; "auto" indentation looks at it.
func (c *Config) Settings(content []byte) correction.Settings {
	s := correction.Settings{
		Format: format.OptionsFor(c.Format.Indent, c.Format.TabWidth, content),
		Naming: query.NamingConventions{
			FieldPrefix:    c.Naming.FieldPrefix,
			StaticPrefix:   c.Naming.StaticPrefix,
			LocalPrefix:    c.Naming.LocalPrefix,
			CamelConstants: c.Naming.ConstantStyle == "camel",
		},
		MaxProposals: c.Assist.MaxProposals,
	}
	if len(c.Assist.Disabled) > 0 {
		s.Disabled = make(map[string]bool, len(c.Assist.Disabled))
		for _, id := range c.Assist.Disabled {
			s.Disabled[id] = true
		}
	}
	if len(c.Assist.Relevance) > 0 {
		s.Relevance = make(map[string]int, len(c.Assist.Relevance))
		for id, n := range c.Assist.Relevance {
			s.Relevance[id] = n
		}
	}
	return s
}

// UnknownRules lists configured rule ids that the catalogue does not know.
func (c *Config) UnknownRules(cat *correction.Catalogue) []string {
	known := make(map[string]bool)
	for _, r := range cat.Rules() {
		known[r.ID] = true
	}
	var out []string
	seen := make(map[string]bool)
	check := func(id string) {
		if !known[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range c.Assist.Disabled {
		check(id)
	}
	for id := range c.Assist.Relevance {
		check(id)
	}
	sort.Strings(out)
	return out
}
