package engine

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/VKCOM/modbuild/internal/common"
)

// directoryDescriptor is the recognized-variable allow-list for a BUILD.yaml
// file, grounded on original_source/buildtool.py's DirectoryConfig.process,
// which only ever reads CFLAGS/LDFLAGS/PKGCONFIG out of the exec'd globals.
type directoryDescriptor struct {
	CFlags    []string `yaml:"CFLAGS"`
	LDFlags   []string `yaml:"LDFLAGS"`
	PkgConfig []string `yaml:"PKGCONFIG"`
}

// DirectoryConfig is the resolved, pkg-config-expanded result for one
// directory: the flags every file under it should inherit.
type DirectoryConfig struct {
	Dir     string
	CFlags  []string
	LDFlags []string
}

// cachedDirectoryConfig is what gets memoised to buildvars.json, so a
// pkg-config invocation (and the YAML parse) doesn't repeat on every run
// unless the descriptor's CFLAGS/LDFLAGS/PKGCONFIG lists change. A change in
// what pkg-config itself would print does not invalidate the cache.
type cachedDirectoryConfig struct {
	DescriptorHash string   `json:"descriptor_hash"`
	CFlags         []string `json:"cflags"`
	LDFlags        []string `json:"ldflags"`
}

// DirectoryConfigCache is component C3, grounded on
// original_source/buildtool.py's DirectoryConfig class (process/handle_pkgconfig/filter_cflags).
type DirectoryConfigCache struct {
	mu        sync.Mutex
	resolved  map[string]*DirectoryConfig
	buildDir  string
	pkgConfig func(args ...string) (string, error)
}

func NewDirectoryConfigCache(buildDir string) *DirectoryConfigCache {
	return &DirectoryConfigCache{
		resolved: make(map[string]*DirectoryConfig),
		buildDir: buildDir,
		pkgConfig: func(args ...string) (string, error) {
			out, err := exec.Command("pkg-config", args...).Output()
			return string(out), err
		},
	}
}

// descriptorPath returns the BUILD.yaml/BUILD.yml path for dir, preferring
// .yaml, or "" if neither exists.
func descriptorPath(paths *PathCache, dir string) string {
	for _, name := range []string{"BUILD.yaml", "BUILD.yml"} {
		candidate := filepath.Join(dir, name)
		if paths.Exists(candidate) {
			return candidate
		}
	}
	return ""
}

// Resolve returns dir's effective compiler/linker flags from dir's own
// BUILD.yaml/BUILD.yml only; parent directories are not consulted, so a
// subdirectory with no descriptor of its own gets no extra flags (each
// directory's descriptor is self-contained).
func (c *DirectoryConfigCache) Resolve(paths *PathCache, dir string) (*DirectoryConfig, error) {
	dir = Canonicalize(dir)

	c.mu.Lock()
	if cfg, ok := c.resolved[dir]; ok {
		c.mu.Unlock()
		return cfg, nil
	}
	c.mu.Unlock()

	descPath := descriptorPath(paths, dir)
	if descPath == "" {
		cfg := &DirectoryConfig{Dir: dir}
		c.mu.Lock()
		c.resolved[dir] = cfg
		c.mu.Unlock()
		return cfg, nil
	}

	data, err := os.ReadFile(descPath)
	if err != nil {
		return nil, err
	}

	var desc directoryDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, &CorruptInfoFileError{Path: descPath, Reason: err.Error()}
	}

	sideFile := filepath.Join(c.buildDir, "buildvars", dir, "buildvars.json")
	descHash := hashStrings(desc.CFlags, desc.LDFlags, desc.PkgConfig)

	if cached, ok := c.readSideFile(sideFile); ok && cached.DescriptorHash == descHash {
		cfg := &DirectoryConfig{Dir: dir, CFlags: cached.CFlags, LDFlags: cached.LDFlags}
		c.mu.Lock()
		c.resolved[dir] = cfg
		c.mu.Unlock()
		return cfg, nil
	}

	cflags := append([]string{}, desc.CFlags...)
	ldflags := append([]string{}, desc.LDFlags...)

	for _, pkg := range desc.PkgConfig {
		pc, err := c.handlePkgConfig(pkg)
		if err != nil {
			return nil, err
		}
		cflags = append(cflags, pc.CFlags...)
		ldflags = append(ldflags, pc.LDFlags...)
	}

	cfg := &DirectoryConfig{Dir: dir, CFlags: cflags, LDFlags: ldflags}

	if err := c.writeSideFile(sideFile, cachedDirectoryConfig{DescriptorHash: descHash, CFlags: cflags, LDFlags: ldflags}); err != nil {
		common.Log.Warn("could not cache directory config:", sideFile, err)
	}

	c.mu.Lock()
	c.resolved[dir] = cfg
	c.mu.Unlock()
	return cfg, nil
}

type pkgConfigFlags struct {
	CFlags  []string
	LDFlags []string
}

// handlePkgConfig shells out to pkg-config and splits its output into
// compile/link flags, grounded on DirectoryConfig.handle_pkgconfig. Output is
// trusted verbatim — pkg-config is a system tool with its own stable
// contract, re-parsing or validating its flag syntax is out of scope per
// spec.md's Non-goals around "a general build description language".
func (c *DirectoryConfigCache) handlePkgConfig(pkg string) (pkgConfigFlags, error) {
	cflagsOut, err := c.pkgConfig("--cflags", pkg)
	if err != nil {
		return pkgConfigFlags{}, &PkgConfigFailedError{Package: pkg, Reason: err.Error()}
	}
	ldflagsOut, err := c.pkgConfig("--libs", pkg)
	if err != nil {
		return pkgConfigFlags{}, &PkgConfigFailedError{Package: pkg, Reason: err.Error()}
	}

	return pkgConfigFlags{
		CFlags:  filterCFlags(strings.Fields(cflagsOut)),
		LDFlags: strings.Fields(ldflagsOut),
	}, nil
}

// filterCFlags strips "-std=..." from pkg-config's --cflags output: the
// build's own -std flag (chosen per spec.md's C++20/23 module requirement)
// must win, matching DirectoryConfig.filter_cflags's rationale.
func filterCFlags(flags []string) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if strings.HasPrefix(f, "-std=") {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (c *DirectoryConfigCache) readSideFile(path string) (cachedDirectoryConfig, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cachedDirectoryConfig{}, false
	}
	var cached cachedDirectoryConfig
	if err := json.Unmarshal(data, &cached); err != nil {
		return cachedDirectoryConfig{}, false
	}
	return cached, true
}

func (c *DirectoryConfigCache) writeSideFile(path string, cfg cachedDirectoryConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return common.WriteFileAtomic(path, data)
}

func hashStrings(lists ...[]string) string {
	var b strings.Builder
	for _, list := range lists {
		for _, s := range list {
			b.WriteString(s)
			b.WriteByte(0)
		}
		b.WriteByte(0)
	}
	return common.HashString(b.String())
}
