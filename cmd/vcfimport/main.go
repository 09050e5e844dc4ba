package main

import (
	"log"
	"os"

	cli "github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:            "vcfimport",
		Usage:           "Validate and import VCF files with sample location attributes",
		HideHelpCommand: true,
		Version:         "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Configuration file (YAML) overriding defaults and environment",
				EnvVars:  []string{"IMPORTER_CONFIG_FILE"},
				Category: "Optional",
			},
			&cli.StringFlag{
				Name:     "db",
				Usage:    "SQLite database holding assemblies, variations and reports",
				Value:    "importer.db",
				Category: "Optional",
			},
			&cli.BoolFlag{
				Name:     "debug",
				Usage:    "Log every step, including external tool output",
				Category: "Optional",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "Validate a VCF file and its attributes without storing anything",
				Flags:  runFlags,
				Action: validateAction,
			},
			{
				Name:  "import",
				Usage: "Validate a VCF file, then store the variation record and its report",
				Flags: append(runFlags,
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Name of the variation object, defaults to the VCF file name",
						Category: "Optional",
					},
					&cli.StringFlag{
						Name:     "stats-args",
						Usage:    "Extra plink flags, groups separated by ';' (e.g. \"--maf 0.05;--geno 0.1\")",
						Category: "Optional",
					},
					&cli.StringFlag{
						Name:     "reports",
						Usage:    "Directory receiving report folders",
						Value:    "reports",
						Category: "Optional",
					},
				),
				Action: importAction,
			},
			{
				Name:  "assemblies",
				Usage: "Manage reference assemblies",
				Subcommands: []*cli.Command{
					{
						Name:      "load",
						Usage:     "Register the contigs of an assembly from a .fai index or a list of contig names",
						ArgsUsage: "<contigs file>",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "genome-ref",
								Aliases:  []string{"g"},
								Usage:    "Name of the assembly",
								Required: true,
								Category: "Required",
							},
						},
						Action: loadAssemblyAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New(os.Stderr, "", 0).Fatal(err)
	}
}

var runFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "vcf",
		Aliases:  []string{"i"},
		Usage:    "The VCF file to validate (.vcf or .vcf.gz)",
		Required: true,
		Category: "Required",
	},
	&cli.StringFlag{
		Name:     "attributes",
		Aliases:  []string{"a"},
		Usage:    "Tab separated sample attributes (id, latitude, longitude, ...)",
		Required: true,
		Category: "Required",
	},
	&cli.StringFlag{
		Name:     "genome-ref",
		Aliases:  []string{"g"},
		Usage:    "Registered assembly the VCF was called against",
		Required: true,
		Category: "Required",
	},
	&cli.StringFlag{
		Name:     "description",
		Usage:    "Population description",
		Category: "Optional",
	},
}
