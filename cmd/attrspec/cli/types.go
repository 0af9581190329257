// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/attrspec/lib/binhash"
	"github.com/bureau-foundation/attrspec/lib/config"
	"github.com/bureau-foundation/attrspec/lib/typesys"
)

// TypeOptions holds the shared flags that select the configuration
// file and the type context. Flags override the corresponding config
// keys; --types adds manifests to the configured ones.
//
// Usage pattern:
//
//	var types cli.TypeOptions
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
//	        types.AddFlags(flagSet)
//	        return flagSet
//	    },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        environment, err := types.Load(logger)
//	        ...
//	    },
//	}
type TypeOptions struct {
	ConfigPath    string
	Manifests     []string
	DefaultModule string
	Fallback      string
}

// AddFlags registers --config, --types, --module, and --fallback.
func (o *TypeOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.ConfigPath, "config", "", "path to attrspec.yaml (default: $ATTRSPEC_CONFIG, else built-in defaults)")
	flagSet.StringArrayVarP(&o.Manifests, "types", "t", nil, "type manifest file (YAML or JSONC); repeatable")
	flagSet.StringVarP(&o.DefaultModule, "module", "m", "", "module that unqualified type names resolve against")
	flagSet.StringVar(&o.Fallback, "fallback", "", "unqualified names outside the default module: none, unique, or first")
}

// Environment is the loaded configuration and the type context built
// from it.
type Environment struct {
	Config *config.Config

	// Context resolves against the configured default module.
	Context *typesys.Context

	// Fingerprint identifies the context for the spec cache.
	Fingerprint string

	modules  []*typesys.Module
	fallback typesys.Fallback

	mutex    sync.Mutex
	contexts map[string]*typesys.Context
}

// Load reads the configuration, applies flag overrides, validates, and
// loads every manifest. It also applies the configured log level.
func (o *TypeOptions) Load(logger *slog.Logger) (*Environment, error) {
	cfg, err := config.LoadOrDefault(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg.Types.Manifests = append(cfg.Types.Manifests, o.Manifests...)
	if o.DefaultModule != "" {
		cfg.Types.DefaultModule = o.DefaultModule
	}
	if o.Fallback != "" {
		cfg.Types.Fallback = o.Fallback
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	SetLogLevel(cfg.LogLevel())

	fallback, err := typesys.ParseFallback(cfg.Types.Fallback)
	if err != nil {
		return nil, err
	}

	environment := &Environment{
		Config:   cfg,
		fallback: fallback,
		contexts: make(map[string]*typesys.Context),
	}
	parts := []string{cfg.Types.DefaultModule, string(fallback)}
	for _, path := range cfg.Types.Manifests {
		module, err := typesys.LoadManifest(path)
		if err != nil {
			return nil, err
		}
		digest, err := binhash.HashFile(path)
		if err != nil {
			return nil, err
		}
		environment.modules = append(environment.modules, module)
		parts = append(parts, binhash.FormatDigest(digest))
		logger.Debug("loaded type manifest",
			"path", path,
			"module", module.Name(),
			"types", len(module.Types()),
		)
	}
	environment.Fingerprint = binhash.FormatDigest(binhash.ContextDigest(parts...))

	defaultModule := cfg.Types.DefaultModule
	if defaultModule == "" && len(environment.modules) == 1 {
		defaultModule = environment.modules[0].Name()
	}
	environment.Context, err = environment.ContextFor(defaultModule)
	if err != nil {
		return nil, err
	}
	return environment, nil
}

// ContextFor returns a context whose default module is the loaded
// module called name. An empty name gives a context with no default
// module. Contexts are built once per name.
func (e *Environment) ContextFor(name string) (*typesys.Context, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if context, ok := e.contexts[name]; ok {
		return context, nil
	}

	var defaultModule *typesys.Module
	if name != "" {
		for _, module := range e.modules {
			if module.Name() == name {
				defaultModule = module
				break
			}
		}
		if defaultModule == nil {
			return nil, fmt.Errorf("module %s is not loaded (load its manifest with --types)", name)
		}
	}

	context := typesys.NewContext(defaultModule,
		typesys.WithModules(e.modules...),
		typesys.WithFallback(e.fallback),
	)
	e.contexts[name] = context
	return context, nil
}
