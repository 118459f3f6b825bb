// SPDX-License-Identifier: Apache-2.0

// Package cmd implements liscope's command-line interface.
package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liscope/liscope/checker"
	"github.com/liscope/liscope/config"
	"github.com/liscope/liscope/infer"
	"github.com/liscope/liscope/internal/logger"
	"github.com/liscope/liscope/license"
	"github.com/liscope/liscope/schema"
)

var (
	flagResourcesDir string
	flagConfigFile   string
	flagLogLevel     string
)

func NewRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           "liscope",
		Short:         "Reason about SPDX license compatibility across a dependency graph",
		Long:          "liscope infers license compatibility from declared license features, then checks and propagates it across a project's dependency graph.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(flagLogLevel)
			if err != nil {
				return logger.Log().Errorf("invalid --log-level %q: %v", flagLogLevel, err)
			}
			logger.Log().SetLevel(level)
			return nil
		},
	}

	command.PersistentFlags().StringVar(&flagResourcesDir, "resources", "resources", "directory holding licenses/, exceptions/, and the config/schemas.toml action schema")
	command.PersistentFlags().StringVar(&flagConfigFile, "config", "", "policy config TOML (license_isolations, license_spread, literal_mapping, blacklist); defaults to resources/config/default.toml")
	command.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: trace, debug, info, warn, error")

	command.AddCommand(NewCommandInfer())
	command.AddCommand(NewCommandCheck())
	command.AddCommand(NewCommandGraph())
	command.AddCommand(NewCommandLicense())
	return command
}

// Execute runs the root command, wiring os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// runtime bundles everything a subcommand needs to reason about licenses:
// the knowledge graph, the checker built on it, and the policy config.
type runtime struct {
	licenses map[string]schema.LicenseFeature
	schemas  schema.Schemas
	kg       *infer.KnowledgeGraph
	checker  *checker.Checker
	config   config.Config
}

// loadRuntime loads licenses+exceptions+schemas from --resources, runs
// inference to build the knowledge graph, and loads --config (or
// resources/config/default.toml when unset).
func loadRuntime() (*runtime, error) {
	logger.Log().Enter()
	defer logger.Log().Exit()

	schemas, err := license.LoadSchemas(filepath.Join(flagResourcesDir, "config"))
	if err != nil {
		return nil, err
	}

	licenses, err := license.LoadLicenses(filepath.Join(flagResourcesDir, "licenses"))
	if err != nil {
		return nil, err
	}

	exceptions, err := license.LoadExceptions(filepath.Join(flagResourcesDir, "exceptions"))
	if err != nil {
		return nil, err
	}
	for id, feature := range exceptions {
		licenses[id] = feature
	}

	for _, feature := range licenses {
		if err := license.ValidateAgainstSchema(feature, schemas); err != nil {
			return nil, err
		}
	}

	kg, err := infer.Generate(schemas, licenses)
	if err != nil {
		return nil, err
	}

	configPath := flagConfigFile
	if configPath == "" {
		configPath = filepath.Join(flagResourcesDir, "config", "default.toml")
	}
	cfg, err := config.FromTOML(configPath)
	if err != nil {
		return nil, err
	}

	return &runtime{
		licenses: licenses,
		schemas:  schemas,
		kg:       kg,
		checker:  checker.New(kg, licenses),
		config:   cfg,
	}, nil
}
