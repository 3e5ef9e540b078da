// Package compose owns the persisted deployment-state document
// (docker-compose.yml): which image each logical service runs, plus
// generation of the initial stack description.
//
// The document is owned exclusively by State and mutated only through its
// read-entire/mutate/write-entire-back API. A single writer is assumed;
// only one run operates on a deployment at a time.
package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Service names within the stack.
const (
	ServiceApp      = "nextcloud-fpm"
	ServiceCron     = "nextcloud-cron"
	ServicePostgres = "nextcloud-postgres"
	ServiceRedis    = "nextcloud-redis"
	ServiceNginx    = "nextcloud-nginx"
)

// FileName is the compose document file name inside the base path.
const FileName = "docker-compose.yml"

// ErrCorruptDeploymentState means the persisted document could not be
// parsed. Nothing may proceed against a corrupt deployment description.
var ErrCorruptDeploymentState = errors.New("deployment state document is unparseable")

// Document is the persisted service topology.
type Document struct {
	Services map[string]*Service `yaml:"services"`
}

// Service describes one compose service.
type Service struct {
	Image         string                `yaml:"image,omitempty"`
	Build         string                `yaml:"build,omitempty"`
	ContainerName string                `yaml:"container_name,omitempty"`
	Restart       string                `yaml:"restart,omitempty"`
	Entrypoint    string                `yaml:"entrypoint,omitempty"`
	Command       []string              `yaml:"command,omitempty"`
	EnvFile       []string              `yaml:"env_file,omitempty"`
	Ports         []string              `yaml:"ports,omitempty"`
	Volumes       []string              `yaml:"volumes,omitempty"`
	DependsOn     map[string]Dependency `yaml:"depends_on,omitempty"`
	Healthcheck   *Healthcheck          `yaml:"healthcheck,omitempty"`
}

// Dependency is a depends_on entry with a startup condition.
type Dependency struct {
	Condition string `yaml:"condition"`
}

// Healthcheck is a compose healthcheck block.
type Healthcheck struct {
	Test        []string `yaml:"test"`
	Interval    string   `yaml:"interval,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	Retries     int      `yaml:"retries,omitempty"`
	StartPeriod string   `yaml:"start_period,omitempty"`
}

// State is the handle on a loaded deployment-state document.
type State struct {
	path string
	doc  *Document
}

// Load reads and parses the compose document at path.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading deployment state: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDeploymentState, err)
	}
	return &State{path: path, doc: &doc}, nil
}

// LoadDir loads the compose document from the conventional file name
// inside basePath.
func LoadDir(basePath string) (*State, error) {
	return Load(filepath.Join(basePath, FileName))
}

// Path returns the document's location on disk.
func (s *State) Path() string { return s.path }

// ServiceImage returns the image reference of the named service and
// whether the service exists in the topology.
func (s *State) ServiceImage(name string) (string, bool) {
	svc, ok := s.doc.Services[name]
	if !ok {
		return "", false
	}
	return svc.Image, true
}

// SetServiceImageTag points the named service at repo:tag and writes the
// whole document back. It returns the previous image reference. A service
// absent from the topology is a silent no-op: optional services may never
// have been enabled for this deployment.
func (s *State) SetServiceImageTag(name, repo, tag string) (previous string, changed bool, err error) {
	svc, ok := s.doc.Services[name]
	if !ok {
		return "", false, nil
	}
	previous = svc.Image
	svc.Image = fmt.Sprintf("%s:%s", repo, tag)
	if err := s.save(); err != nil {
		return previous, false, err
	}
	return previous, true, nil
}

func (s *State) save() error {
	return Save(s.path, s.doc)
}

// Save writes a compose document to path.
func Save(path string, doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding compose document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing compose document: %w", err)
	}
	return nil
}
