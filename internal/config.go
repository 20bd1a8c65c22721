package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultListenAddr is the address the HTTP server binds when no
	// override is given. Port 5005 matches the original deployment.
	DefaultListenAddr = ":5005"

	// DefaultCommitEpoch is the frozen logical timestamp recorded in every
	// commit. Object ids must be reproducible, so wall-clock time is never
	// consulted; this value is only a default and may be overridden in the
	// config file.
	DefaultCommitEpoch = 1701926400

	// DefaultSynthTimeout bounds one synthesis run. CDKTF synthesis
	// routinely takes tens of seconds on cold provider caches.
	DefaultSynthTimeout = 120 * time.Second
)

// Config is the immutable process-wide configuration, constructed once at
// startup and passed explicitly to components.
type Config struct {
	ListenAddr  string `toml:"listen_addr"`
	ProjectRoot string `toml:"project_root"`
	Branch      string `toml:"branch"`

	AuthorName     string `toml:"author_name"`
	AuthorEmail    string `toml:"author_email"`
	CommitEpoch    int64  `toml:"commit_epoch"`
	CommitTimezone string `toml:"commit_timezone"`
	CommitMessage  string `toml:"commit_message"`

	Synth SynthConfig `toml:"synth"`

	Debug bool `toml:"debug"`
}

// SynthConfig selects and parameterizes the synthesis runner.
type SynthConfig struct {
	// Mode is "exec" to run the tool directly on the host, or "docker" to
	// run the pinned synthesis image through the Docker API.
	Mode string `toml:"mode"`

	// Command is the exec-mode tool invocation. The placeholder {output}
	// is replaced with the request's workspace output directory.
	Command []string `toml:"command"`

	// Image is the docker-mode synthesis image, pinned by tag or digest.
	Image string `toml:"image"`

	// OutputDir is the directory, relative to the project root inside the
	// container, that the docker-mode tool writes its output to.
	OutputDir string `toml:"output_dir"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the synthesis deadline.
func (s SynthConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return DefaultSynthTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the built-in configuration: branch main, the
// project's fixed commit identity, and host-exec CDKTF synthesis.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		ProjectRoot:    ".",
		Branch:         "main",
		AuthorName:     "CDK2Git",
		AuthorEmail:    "cdk2git@example.com",
		CommitEpoch:    DefaultCommitEpoch,
		CommitTimezone: "+0000",
		CommitMessage:  "Initial commit - CDKTF synthesis output",
		Synth: SynthConfig{
			Mode:      "exec",
			Command:   []string{"cdktf", "synth", "--output", "{output}"},
			OutputDir: "cdktf.out",
		},
	}
}

// LoadConfig merges a TOML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config file %q: %w\nCheck that the file exists and is valid TOML", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys in %q: %s", path, strings.Join(keys, ", "))
	}
	return config, nil
}

// Validate reports the first problem that would prevent the server from
// operating.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.ProjectRoot == "" {
		return fmt.Errorf("project_root must not be empty")
	}
	if c.Branch == "" || strings.ContainsAny(c.Branch, " \t\n~^:?*[\\") {
		return fmt.Errorf("branch %q is not a valid git branch name", c.Branch)
	}
	if c.AuthorName == "" || c.AuthorEmail == "" {
		return fmt.Errorf("author_name and author_email must not be empty")
	}
	switch c.Synth.Mode {
	case "exec":
		if len(c.Synth.Command) == 0 {
			return fmt.Errorf("synth.command must not be empty in exec mode")
		}
	case "docker":
		if c.Synth.Image == "" {
			return fmt.Errorf("synth.image must be a pinned image in docker mode")
		}
		if c.Synth.OutputDir == "" {
			return fmt.Errorf("synth.output_dir must not be empty in docker mode")
		}
	default:
		return fmt.Errorf("synth.mode %q must be \"exec\" or \"docker\"", c.Synth.Mode)
	}
	return nil
}
