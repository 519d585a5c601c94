package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRenderCmd(root *rootArgs) *cobra.Command {
	var (
		width   float64
		section string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render a lab's chart as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			svc, m, err := open(ctx, root, argv[0])
			if err != nil {
				return err
			}
			defer svc.Stop(ctx)

			res, err := svc.Chart(ctx, m.Name, width, section)
			if err != nil {
				return err
			}
			w, closeOut, err := output(cmd, out)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, res.SVG); err != nil {
				_ = closeOut()
				return fmt.Errorf("write svg: %w", err)
			}
			return closeOut()
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width in pixels (0 uses the manifest width)")
	cmd.Flags().StringVar(&section, "section", "", "narrative section whose highlight applies")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newTrendCmd(root *rootArgs) *cobra.Command {
	var (
		width int
		group string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "trend <manifest>",
		Short: "Render a lab's per-group trend chart as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			ctx := cmd.Context()
			svc, m, err := open(ctx, root, argv[0])
			if err != nil {
				return err
			}
			defer svc.Stop(ctx)

			body, err := svc.Trend(ctx, m.Name, group, width)
			if err != nil {
				return err
			}
			w, closeOut, err := output(cmd, out)
			if err != nil {
				return err
			}
			if _, err := w.Write(body); err != nil {
				_ = closeOut()
				return fmt.Errorf("write svg: %w", err)
			}
			return closeOut()
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "chart width in pixels (height is half)")
	cmd.Flags().StringVar(&group, "group", "", "grouping field (default from the manifest)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
