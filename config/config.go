// Package config loads the sm2tool TOML configuration.
package config

import (
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opentoys/sm2kit/crypto/sm2"
	"github.com/opentoys/sm2kit/crypto/sm2ec"
	"github.com/opentoys/sm2kit/logx"
)

const maxUIDLen = 0x2000 - 1

// Engine selects the point multiplication backend and its table cache.
type Engine struct {
	// Backend is auto, table or ladder.
	Backend string

	// CacheCapacity is the number of public keys the table cache tracks.
	CacheCapacity int

	// BuildThreshold is the use count at which a key gets a table.
	BuildThreshold int

	// ValidateKeys checks the order of every generated public key.
	ValidateKeys bool
}

func (e *Engine) validate() error {
	switch strings.ToLower(e.Backend) {
	case "":
		e.Backend = sm2ec.BackendAuto
	case sm2ec.BackendAuto, sm2ec.BackendTable, sm2ec.BackendLadder:
		e.Backend = strings.ToLower(e.Backend)
	default:
		return errors.Newf("config: Engine: Backend '%v' is invalid", e.Backend)
	}
	if e.CacheCapacity < 0 {
		return errors.Newf("config: Engine: CacheCapacity %d is negative", e.CacheCapacity)
	}
	if e.CacheCapacity == 0 {
		e.CacheCapacity = sm2ec.DefaultCacheCapacity
	}
	if e.BuildThreshold < 0 {
		return errors.Newf("config: Engine: BuildThreshold %d is negative", e.BuildThreshold)
	}
	if e.BuildThreshold == 0 {
		e.BuildThreshold = sm2ec.DefaultBuildThreshold
	}
	return nil
}

// Signing holds the identity bound into ZA.
type Signing struct {
	// UID is the signer identity as a plain string.
	UID string

	// UIDHex is the signer identity in hex, for identities that are not
	// text. It is exclusive with UID.
	UIDHex string
}

func (s *Signing) validate() error {
	if s.UID != "" && s.UIDHex != "" {
		return errors.New("config: Signing: UID and UIDHex are both set")
	}
	uid, err := s.Identity()
	if err != nil {
		return err
	}
	if len(uid) > maxUIDLen {
		return errors.Newf("config: Signing: identity of %d bytes is too long", len(uid))
	}
	return nil
}

// Identity returns the configured uid, or the default one when none is set.
func (s *Signing) Identity() ([]byte, error) {
	switch {
	case s.UIDHex != "":
		b, err := hex.DecodeString(s.UIDHex)
		if err != nil {
			return nil, errors.Wrap(err, "config: Signing: UIDHex")
		}
		return b, nil
	case s.UID != "":
		return []byte(s.UID), nil
	}
	return sm2.DefaultUID(), nil
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// Level specifies the log level.
	Level string

	// AddSource adds the caller's file and line to every record.
	AddSource bool
}

func (l *Logging) validate() error {
	lvl, err := logx.ParseLevel(l.Level)
	if err != nil {
		return errors.Wrap(err, "config: Logging")
	}
	l.Level = lvl.String()
	return nil
}

// Metrics controls the Prometheus counters of the table cache.
type Metrics struct {
	Enable bool
}

// Config is the top level configuration.
type Config struct {
	Engine  *Engine
	Signing *Signing
	Logging *Logging
	Metrics *Metrics
}

// FixupAndValidate applies defaults to config entries and validates the
// configuration sections.
func (c *Config) FixupAndValidate() error {
	if c.Engine == nil {
		c.Engine = &Engine{}
	}
	if c.Signing == nil {
		c.Signing = &Signing{}
	}
	if c.Logging == nil {
		c.Logging = &Logging{}
	}
	if c.Metrics == nil {
		c.Metrics = &Metrics{}
	}
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Signing.validate(); err != nil {
		return err
	}
	return c.Logging.validate()
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	c := new(Config)
	if err := c.FixupAndValidate(); err != nil {
		panic(err)
	}
	return c
}

// Logger returns the logger described by the Logging section, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if c.Logging.Disable {
		return slog.New(slog.DiscardHandler)
	}
	// Level was normalized by FixupAndValidate.
	lvl, _ := logx.ParseLevel(c.Logging.Level)
	return logx.NewLogger(w, logx.WithLevel(lvl), logx.WithAddSource(c.Logging.AddSource))
}

// Curve builds the curve described by c. Cache metrics are registered on reg
// when Metrics.Enable is set; a nil reg means the default registerer.
func (c *Config) Curve(log *slog.Logger, reg prometheus.Registerer) (*sm2.Curve, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	opts := []sm2ec.CacheOption{
		sm2ec.WithCapacity(c.Engine.CacheCapacity),
		sm2ec.WithBuildThreshold(c.Engine.BuildThreshold),
		sm2ec.WithCacheLogger(log),
	}
	if c.Metrics.Enable {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		opts = append(opts, sm2ec.WithRegisterer(reg))
	}
	cache := sm2ec.NewTableCache(opts...)
	mult, err := sm2ec.SelectBackend(c.Engine.Backend, cache)
	if err != nil {
		return nil, errors.Wrap(err, "config: Engine")
	}
	uid, err := c.Signing.Identity()
	if err != nil {
		return nil, err
	}
	engine := sm2ec.NewEngine(
		sm2ec.WithMultiplier(mult),
		sm2ec.WithTableCache(cache),
		sm2ec.WithEngineLogger(log),
	)
	log.Debug("config: curve ready", "backend", mult.Name(), "capacity", cache.Capacity())
	return sm2.New(
		sm2.WithEngine(engine),
		sm2.WithLogger(log),
		sm2.WithUID(uid),
		sm2.WithKeyValidation(c.Engine.ValidateKeys),
	), nil
}

// Load parses and validates the provided buffer b as a config file body and
// returns the Config.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, errors.Newf("config: Undecoded keys in config file: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads, parses and validates the provided file and returns the
// Config.
func LoadFile(f string) (*Config, error) {
	b, err := os.ReadFile(f)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	return Load(b)
}
