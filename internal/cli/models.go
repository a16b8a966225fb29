package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fjpolo/tlbench/internal/rtl"
)

// ModelInfo describes a registered model.
type ModelInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	DefaultWidth int      `json:"default_width"`
	Params       []string `json:"params"`
}

// NewModelsCommand creates the models command.
func NewModelsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "models",
		Short:         "List the models a scenario can name",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(rootOpts, cmd)
		},
	}
	return cmd
}

func runModels(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	specs := rtl.Specs()
	models := make([]ModelInfo, 0, len(specs))
	for _, s := range specs {
		params := s.Params
		if params == nil {
			params = []string{}
		}
		models = append(models, ModelInfo{
			Name:         s.Name,
			Description:  s.Description,
			DefaultWidth: s.DefaultWidth,
			Params:       params,
		})
	}

	if formatter.IsJSON() {
		return formatter.Encode(CLIResponse{Status: "ok", Data: models})
	}

	w := formatter.Writer
	for _, m := range models {
		fmt.Fprintf(w, "%-10s width %-2d %s\n", m.Name, m.DefaultWidth, m.Description)
		if len(m.Params) > 0 {
			fmt.Fprintf(w, "%-10s params: %s\n", "", strings.Join(m.Params, ", "))
		}
	}
	return nil
}
