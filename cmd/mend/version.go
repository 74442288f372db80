package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mend/internal/diagfmt"
	"mend/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Go        string `json:"go"`
	Platform  string `json:"platform"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show mend build information",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotConfig: configOptional},
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "pretty":
			useColor, err := colorFor(cmd, os.Stdout)
			if err != nil {
				return err
			}
			prev := color.NoColor
			color.NoColor = !useColor
			defer func() { color.NoColor = prev }()
			_, err = fmt.Fprint(cmd.OutOrStdout(), version.Banner())
			return err
		case "json":
			return diagfmt.WriteJSON(cmd.OutOrStdout(), versionPayload{
				Tool:      "mend",
				Version:   version.Version,
				GitCommit: strings.TrimSpace(version.GitCommit),
				BuildDate: strings.TrimSpace(version.BuildDate),
				Go:        runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			})
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}
