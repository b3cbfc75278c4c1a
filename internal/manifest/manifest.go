package manifest

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
)

// Banner fragments from the upstream install guides, used to recognize a
// healthy tool from its terminal output.
const (
	ElmerGridBannerFragment   = "Thank you for using Elmergrid!"
	ElmerSolverBannerFragment = "ElmerSolver finite element software, Welcome!"
)

// Default check names, one per verification step of the install guide.
const (
	CheckGmshBinary  = "gmsh-binary"
	CheckGmshPython  = "gmsh-python"
	CheckElmerGrid   = "elmergrid"
	CheckElmerSolver = "elmersolver"
)

// DefaultTimeout bounds a single tool probe. The probed binaries print
// their banner immediately; anything slower is treated as a hang.
const DefaultTimeout = 15 * time.Second

// Tool describes one toolchain probe: which command to run and how to
// judge its output.
type Tool struct {
	// Name identifies the check in reports, history and the status API.
	Name string `mapstructure:"name"`

	// Command is looked up on PATH unless Path pins an explicit binary.
	Command string   `mapstructure:"command"`
	Path    string   `mapstructure:"path"`
	Args    []string `mapstructure:"args"`

	// Banner is a fragment the tool's output must contain to pass.
	Banner string `mapstructure:"banner"`

	// MinVersion is a semver constraint checked against the version the
	// tool reports, e.g. ">= 4.11".
	MinVersion string `mapstructure:"min_version"`

	// ExitOnly accepts a clean exit as success with no banner or version
	// requirement. Used for import-style probes where the only success
	// signal is "no error raised".
	ExitOnly bool `mapstructure:"exit_only"`

	Timeout  time.Duration `mapstructure:"timeout"`
	Disabled bool          `mapstructure:"disabled"`
}

// Links configures the install-guide link-integrity check.
type Links struct {
	// Doc is the path of the markdown document whose links are checked.
	Doc string `mapstructure:"doc"`

	Timeout time.Duration `mapstructure:"timeout"`

	// RequestsPerSecond paces outbound requests per host.
	RequestsPerSecond int `mapstructure:"requests_per_second"`

	// MaxBodyBytes caps how much of each response body is read.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Manifest is the full verification configuration.
type Manifest struct {
	Tools []Tool `mapstructure:"tools"`
	Links Links  `mapstructure:"links"`
}

// Default returns the manifest matching the upstream install guide: the
// gmsh binary, the gmsh Python binding, ElmerGrid and ElmerSolver.
func Default() *Manifest {
	return &Manifest{
		Tools: []Tool{
			{
				Name:       CheckGmshBinary,
				Command:    "gmsh",
				Args:       []string{"--version"},
				MinVersion: ">= 4.0.0",
				Timeout:    DefaultTimeout,
			},
			{
				Name:     CheckGmshPython,
				Command:  "python3",
				Args:     []string{"-c", "import gmsh"},
				ExitOnly: true,
				Timeout:  DefaultTimeout,
			},
			{
				Name:    CheckElmerGrid,
				Command: "ElmerGrid",
				Banner:  ElmerGridBannerFragment,
				Timeout: DefaultTimeout,
			},
			{
				Name:    CheckElmerSolver,
				Command: "ElmerSolver",
				Banner:  ElmerSolverBannerFragment,
				Timeout: DefaultTimeout,
			},
		},
		Links: Links{
			Doc:               "docs/simulation-toolchain.md",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 4,
			MaxBodyBytes:      64 * 1024,
		},
	}
}

// Load reads a manifest file (YAML, or anything viper understands from the
// file extension) and validates it. Tools omitted from the file fall back
// to defaults only when the file defines no tools at all.
func Load(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m := &Manifest{}
	if err := v.Unmarshal(m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	defaults := Default()
	if len(m.Tools) == 0 {
		m.Tools = defaults.Tools
	}
	applyLinkDefaults(&m.Links, defaults.Links)
	for i := range m.Tools {
		if m.Tools[i].Timeout == 0 {
			m.Tools[i].Timeout = DefaultTimeout
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return m, nil
}

func applyLinkDefaults(links *Links, defaults Links) {
	if links.Timeout == 0 {
		links.Timeout = defaults.Timeout
	}
	if links.RequestsPerSecond == 0 {
		links.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if links.MaxBodyBytes == 0 {
		links.MaxBodyBytes = defaults.MaxBodyBytes
	}
}

// Validate checks the manifest for entries that could never produce a
// meaningful verdict.
func (m *Manifest) Validate() error {
	if len(m.Tools) == 0 {
		return fmt.Errorf("manifest defines no tools")
	}

	seen := make(map[string]bool, len(m.Tools))
	for i := range m.Tools {
		tool := &m.Tools[i]
		if err := tool.Validate(); err != nil {
			return fmt.Errorf("tool %d: %w", i, err)
		}
		if seen[tool.Name] {
			return fmt.Errorf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true
	}

	if m.Links.RequestsPerSecond < 0 {
		return fmt.Errorf("links: requests_per_second must be >= 0, got %d", m.Links.RequestsPerSecond)
	}
	if m.Links.MaxBodyBytes < 0 {
		return fmt.Errorf("links: max_body_bytes must be >= 0, got %d", m.Links.MaxBodyBytes)
	}
	return nil
}

// Validate checks a single tool entry. A tool needs a name, a command, and
// at least one success criterion: a non-empty banner fragment, a version
// constraint, or the explicit exit-only flag.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if t.Command == "" && t.Path == "" {
		return fmt.Errorf("tool %q: command or path required", t.Name)
	}
	if t.Banner == "" && t.MinVersion == "" && !t.ExitOnly {
		return fmt.Errorf("tool %q: expected banner text must not be empty (or set min_version / exit_only)", t.Name)
	}
	if t.MinVersion != "" {
		if _, err := semver.NewConstraint(t.MinVersion); err != nil {
			return fmt.Errorf("tool %q: invalid min_version %q: %w", t.Name, t.MinVersion, err)
		}
	}
	if t.Timeout < 0 {
		return fmt.Errorf("tool %q: timeout must be >= 0", t.Name)
	}
	return nil
}

// Enabled returns the tools that should run, in manifest order.
func (m *Manifest) Enabled() []Tool {
	tools := make([]Tool, 0, len(m.Tools))
	for _, tool := range m.Tools {
		if !tool.Disabled {
			tools = append(tools, tool)
		}
	}
	return tools
}

// Tool returns the entry with the given name, or nil.
func (m *Manifest) Tool(name string) *Tool {
	for i := range m.Tools {
		if m.Tools[i].Name == name {
			return &m.Tools[i]
		}
	}
	return nil
}
