package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vvka-141/pgscan/internal/config"
	"github.com/vvka-141/pgscan/internal/files/scanner"
	"github.com/vvka-141/pgscan/internal/logging"
	"github.com/vvka-141/pgscan/internal/props"
	"github.com/vvka-141/pgscan/internal/searchpath"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

const configFileHint = config.ConfigFileName

// environment is everything a command needs besides its own flags:
// the project file, the property resolver and the logger.
type environment struct {
	cfg    *config.ProjectConfig
	props  *props.Resolver
	logger pgscan.Logger
}

// loadEnvironment reads the project file and builds the property resolver.
// Later sources win: process environment, env file, project properties,
// --property flags.
func loadEnvironment() (*environment, error) {
	logger := newLogger(globalFlags.verbose, globalFlags.logJSON)

	cfg, err := loadProjectConfig()
	if err != nil {
		return nil, err
	}

	sources := make([]map[string]string, 0, 3)

	envFile := globalFlags.envFile
	if envFile == "" {
		envFile = cfg.EnvFilePath()
	}
	if envFile != "" {
		values, err := props.LoadEnvFile(envFile)
		if err != nil {
			return nil, err
		}
		logger.Verbose("loaded %d properties from %s", len(values), envFile)
		sources = append(sources, values)
	}

	sources = append(sources, cfg.Properties)

	cliProps, err := props.ParseKeyValuePairs(globalFlags.properties)
	if err != nil {
		return nil, err
	}
	sources = append(sources, cliProps)

	return &environment{cfg: cfg, props: props.New(sources...), logger: logger}, nil
}

func newLogger(verbose, asJSON bool) pgscan.Logger {
	if asJSON {
		return logging.NewJSONLogger(os.Stderr, verbose)
	}
	return logging.NewConsoleLogger(verbose)
}

// loadProjectConfig loads --config, or ./pgscan.yaml when it exists. A
// missing default file yields an empty configuration.
func loadProjectConfig() (*config.ProjectConfig, error) {
	if globalFlags.configPath != "" {
		cfg, err := config.LoadFile(globalFlags.configPath)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s does not exist", pgscan.ErrInvalidConfig, globalFlags.configPath)
		}
		return cfg, err
	}

	cfg, err := config.Load(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return &config.ProjectConfig{}, nil
	}
	return cfg, err
}

// scanFlagValues holds the flags shared by commands that scan.
type scanFlagValues struct {
	searchPath string
	skipFailed bool
}

// loader picks the search path: the flag, then the project file, then
// PGSCAN_PATH.
func (e *environment) loader(flags scanFlagValues) (*searchpath.Loader, error) {
	if flags.searchPath != "" {
		return searchpath.Parse(flags.searchPath), nil
	}
	if len(e.cfg.SearchPath) > 0 {
		entries, err := e.cfg.ResolveSearchPath(e.props)
		if err != nil {
			return nil, err
		}
		return searchpath.New(entries...), nil
	}
	return searchpath.FromEnv(), nil
}

func (e *environment) policy(flags scanFlagValues) (pgscan.RootErrorPolicy, error) {
	if flags.skipFailed {
		return pgscan.SkipFailedRoots, nil
	}
	return e.cfg.Policy()
}

func (e *environment) scanner(flags scanFlagValues) (*scanner.Scanner, pgscan.RootErrorPolicy, error) {
	loader, err := e.loader(flags)
	if err != nil {
		return nil, 0, err
	}
	policy, err := e.policy(flags)
	if err != nil {
		return nil, 0, err
	}
	e.logger.Verbose("search path: %v (root errors: %s)", loader.Entries(), policy)

	s := scanner.NewScanner(loader).
		WithLogger(e.logger).
		WithRootErrorPolicy(policy)
	return s, policy, nil
}

// collectResources scans pkg keeping resources whose name ends with one of
// suffixes (all of them when suffixes is empty). When failed roots are
// skipped, their errors are reported as a warning on stderr.
func (e *environment) collectResources(flags scanFlagValues, pkg string, suffixes []string) ([]pgscan.Resource, error) {
	s, policy, err := e.scanner(flags)
	if err != nil {
		return nil, err
	}

	resources, err := scanner.Collect(s, pkg, suffixFilter(suffixes))
	if err != nil {
		if policy == pgscan.SkipFailedRoots && isRootFailure(err) {
			printWarning(os.Stderr, "Warning: skipped failed search roots:\n%v", err)
			return resources, nil
		}
		return nil, err
	}
	e.logger.Verbose("%d resource(s) in %s", len(resources), pkg)
	return resources, nil
}

func isRootFailure(err error) bool {
	return errors.Is(err, pgscan.ErrArchiveOpen) || errors.Is(err, pgscan.ErrWalk)
}

func suffixFilter(suffixes []string) pgscan.Transform[pgscan.Resource] {
	if len(suffixes) == 0 {
		return pgscan.Identity
	}
	return pgscan.Filter(func(r pgscan.Resource) bool {
		for _, suffix := range suffixes {
			if strings.HasSuffix(r.Name, suffix) {
				return true
			}
		}
		return false
	})
}
