package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	model "github.com/okian/labviz/internal/domain/model"
	"github.com/okian/labviz/internal/domain/types"
)

type inspectReport struct {
	Summary     model.Summary            `json:"summary"`
	Columns     []string                 `json:"columns"`
	Diagnostics model.Diagnostics        `json:"diagnostics"`
	Groups      []types.GroupSize        `json:"groups,omitempty"`
	Sample      []model.NormalizedRecord `json:"sample,omitempty"`
}

func newInspectCmd(root *rootArgs) *cobra.Command {
	var (
		field  string
		sample int
	)
	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Print pipeline diagnostics and group sizes as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			svc, m, err := open(ctx, root, argv[0])
			if err != nil {
				return err
			}
			defer svc.Stop(ctx)

			ds, err := svc.Dataset(ctx, m.Name)
			if err != nil {
				return err
			}
			report := inspectReport{
				Summary:     ds.Summarize(),
				Columns:     ds.Columns,
				Diagnostics: ds.Diag,
			}
			if field != "" {
				if report.Groups, err = svc.Groups(ctx, m.Name, field); err != nil {
					return err
				}
			}
			if sample > 0 {
				report.Sample = ds.Records[:min(sample, len(ds.Records))]
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "field to group records by")
	cmd.Flags().IntVar(&sample, "sample", 0, "number of normalized records to include")
	return cmd
}
