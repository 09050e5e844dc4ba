package models

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Debug bool `yaml:"debug" envconfig:"IMPORTER_DEBUG"`

	Api struct {
		Url               string        `yaml:"url" envconfig:"IMPORTER_API_URL"`
		Port              string        `yaml:"port" envconfig:"IMPORTER_API_INTERNAL_PORT" default:"5000"`
		ScratchPath       string        `yaml:"scratchPath" envconfig:"IMPORTER_API_SCRATCH_PATH" default:"/tmp/importer"`
		StagingPath       string        `yaml:"stagingPath" envconfig:"IMPORTER_API_STAGING_PATH" default:"/data/staging"`
		ReportsPath       string        `yaml:"reportsPath" envconfig:"IMPORTER_API_REPORTS_PATH" default:"/data/reports"`
		WorkflowsPath     string        `yaml:"workflowsPath" envconfig:"IMPORTER_API_WORKFLOWS_PATH" default:"/app/workflows"`
		KeepWorkDirs      bool          `yaml:"keepWorkDirs" envconfig:"IMPORTER_API_KEEP_WORK_DIRS"`
		ImportConcurrency int64         `yaml:"importConcurrency" envconfig:"IMPORTER_API_IMPORT_CONCURRENCY" default:"2"`
		WorkDirMaxAge     time.Duration `yaml:"workDirMaxAge" envconfig:"IMPORTER_API_WORK_DIR_MAX_AGE" default:"24h"`
		SanitationEvery   int           `yaml:"sanitationEveryHours" envconfig:"IMPORTER_API_SANITATION_EVERY_HOURS" default:"6"`
	} `yaml:"api"`

	Validation struct {
		MinimumVersion        float64       `yaml:"minimumVersion" envconfig:"IMPORTER_MINIMUM_VCF_VERSION" default:"4.1"`
		ValidatorBinary       string        `yaml:"validatorBinary" envconfig:"IMPORTER_VCF_VALIDATOR" default:"vcf_validator"`
		LegacyValidator       string        `yaml:"legacyValidator" envconfig:"IMPORTER_LEGACY_VCF_VALIDATOR" default:"vcf-validator"`
		SubprocessTimeout     time.Duration `yaml:"subprocessTimeout" envconfig:"IMPORTER_SUBPROCESS_TIMEOUT" default:"30m"`
		StatsEnabled          bool          `yaml:"statsEnabled" envconfig:"IMPORTER_STATS_ENABLED"`
		PlinkBinary           string        `yaml:"plinkBinary" envconfig:"IMPORTER_PLINK" default:"plink"`
		PopulationDescription string        `yaml:"populationDescription" envconfig:"IMPORTER_POPULATION_DESCRIPTION" default:"None Provided"`
	} `yaml:"validation"`

	Elasticsearch struct {
		Url      string `yaml:"url" envconfig:"IMPORTER_ES_URL"`
		Username string `yaml:"username" envconfig:"IMPORTER_ES_USERNAME"`
		Password string `yaml:"password" envconfig:"IMPORTER_ES_PASSWORD"`
	} `yaml:"elasticsearch"`

	Drs struct {
		Url        string `yaml:"url" envconfig:"IMPORTER_DRS_URL"`
		Username   string `yaml:"username" envconfig:"IMPORTER_DRS_BASIC_AUTH_USERNAME"`
		Password   string `yaml:"password" envconfig:"IMPORTER_DRS_BASIC_AUTH_PASSWORD"`
		MaxRetries uint64 `yaml:"maxRetries" envconfig:"IMPORTER_DRS_MAX_RETRIES" default:"5"`
	} `yaml:"drs"`

	AuthX struct {
		IsAuthorizationEnabled bool   `yaml:"isAuthorizationEnabled" envconfig:"IMPORTER_AUTHZ_ENABLED"`
		AuthorizationUrl       string `yaml:"authorizationUrl" envconfig:"IMPORTER_AUTHZ_URL"`
	} `yaml:"authx"`
}

// LoadConfig reads defaults and environment variables (after a .env file, if any),
// then overlays the YAML file at path when one is given.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if path == "" {
		return &cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
