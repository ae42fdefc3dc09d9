package dbt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/jackc/pgx/v5"
	"gopkg.in/yaml.v3"
)

const (
	profileName = "postgres"
	targetName  = "dev"
	modelDir    = "models"
)

// ModelInput is an input dataitem version exposed to the project as a model.
type ModelInput struct {
	Name string
	ID   string
}

// ProjectSpec describes the dbt project generated for one run.
type ProjectSpec struct {
	Project string
	Output  string
	Version string
	SQL     string
	Inputs  []ModelInput
	Target  postgres.Config
}

type profileOutput struct {
	Type   string `yaml:"type"`
	Host   string `yaml:"host"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	Port   int    `yaml:"port"`
	DBName string `yaml:"dbname"`
	Schema string `yaml:"schema"`
}

type profile struct {
	Outputs map[string]profileOutput `yaml:"outputs"`
	Target  string                   `yaml:"target"`
}

type projectFile struct {
	Name          string   `yaml:"name"`
	Version       string   `yaml:"version"`
	ConfigVersion int      `yaml:"config-version"`
	Profile       string   `yaml:"profile"`
	ModelPaths    []string `yaml:"model-paths"`
}

type modelVersion struct {
	V      string            `yaml:"v"`
	Config map[string]string `yaml:"config"`
}

type versionedModel struct {
	Name          string         `yaml:"name"`
	LatestVersion string         `yaml:"latest_version"`
	Versions      []modelVersion `yaml:"versions"`
}

type modelsFile struct {
	Models []versionedModel `yaml:"models"`
}

// WriteProject lays out a dbt project under dir.
func WriteProject(dir string, spec ProjectSpec) error {
	models := filepath.Join(dir, modelDir)
	if err := os.MkdirAll(models, 0o750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	target := spec.Target
	profiles := map[string]profile{
		profileName: {
			Outputs: map[string]profileOutput{
				targetName: {
					Type:   "postgres",
					Host:   target.HostName(),
					User:   target.User,
					Pass:   target.Password,
					Port:   target.PortNumber(),
					DBName: target.Database,
					Schema: target.SchemaName(),
				},
			},
			Target: targetName,
		},
	}
	if err := writeYAML(filepath.Join(dir, "profiles.yml"), profiles); err != nil {
		return err
	}

	project := projectFile{
		Name:          normalizeName(spec.Project),
		Version:       "1.0.0",
		ConfigVersion: 2,
		Profile:       profileName,
		ModelPaths:    []string{modelDir},
	}
	if err := writeYAML(filepath.Join(dir, "dbt_project.yml"), project); err != nil {
		return err
	}

	if err := writeFile(filepath.Join(models, spec.Output+".sql"), spec.SQL); err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(models, spec.Output+".yml"), versionedModels(spec.Output, spec.Version)); err != nil {
		return err
	}

	for _, in := range spec.Inputs {
		if err := writeYAML(filepath.Join(models, in.Name+".yml"), versionedModels(in.Name, in.ID)); err != nil {
			return err
		}
		table := pgx.Identifier{VersionedTable(in.Name, in.ID)}.Sanitize()
		sqlPath := filepath.Join(models, VersionedTable(in.Name, in.ID)+".sql")
		if err := writeFile(sqlPath, "SELECT * FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func versionedModels(name, version string) modelsFile {
	return modelsFile{Models: []versionedModel{{
		Name:          name,
		LatestVersion: version,
		Versions: []modelVersion{{
			V:      version,
			Config: map[string]string{"materialized": "table"},
		}},
	}}}
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, string(data))
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
