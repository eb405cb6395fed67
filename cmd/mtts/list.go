package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jwaldner/mtts/internal/table"
)

var listFlags viewFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print one page of the table",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := listFlags.state(cfg.Table.DefaultPageSize)
		if err != nil {
			return err
		}
		res, err := loadResults(cmd.Context())
		if err != nil {
			return err
		}
		view, err := table.NewPipeline(res.Data, table.Stages{}).Run(state)
		if err != nil {
			return err
		}
		return renderList(cmd.OutOrStdout(), table.PresentMetadata(res.Metadata), view)
	},
}

func init() {
	listFlags.register(listCmd, true)
	rootCmd.AddCommand(listCmd)
}

func renderList(out io.Writer, meta table.PresentedMetadata, view table.View) error {
	fmt.Fprintf(out, "Updated %s | %s | %d/%d passing\n\n", meta.UpdatedAt, meta.ConfigSummary, view.PassCount, view.Total)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Stock\tName\tMarket\tPrice\tRS\tVol(lots)\tStatus\tMatch\tNote\t")
	for _, r := range view.Rows {
		rs := r.RSRating.Display
		if r.StrongRS {
			rs += "*"
		}
		note := r.FailReason
		if r.LiquidityFail {
			note = "! " + note
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Code, r.Name, r.Market, r.Price.Display, rs, r.Volume.Display, r.Status, r.MatchCount, note)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, r := range view.Rows {
		if r.Expansion == nil {
			continue
		}
		p := r.Expansion
		fmt.Fprintf(out, "\n%s %s  %s\n", r.Ticker, r.Name, r.ChartURL)
		for _, c := range p.Criteria {
			mark := "✗"
			if c.Passed {
				mark = "✓"
			}
			fmt.Fprintf(out, "  %s %s\n", mark, c.Label)
		}
		for _, a := range p.Averages {
			fmt.Fprintf(out, "  %-8s %10s  %7s\n", a.Label, a.Average.Display, a.Deviation.Display)
		}
		fmt.Fprintf(out, "  SMA 200 prev %s (%s)\n", p.SMA200Prev.Display, p.Slope)
		fmt.Fprintf(out, "  52W high %s (%s)  low %s (%s)\n", p.High52W.Display, p.DistHighPct, p.Low52W.Display, p.DistLowPct)
	}

	pg := view.Page
	if pg.TotalCount == 0 {
		fmt.Fprintln(out, "\nNo stocks match the current filters.")
		return nil
	}
	_, err := fmt.Fprintf(out, "\nShowing %d-%d of %d | Page %d/%d\n", pg.FirstRow, pg.LastRow, pg.TotalCount, pg.PageIndex+1, pg.PageCount)
	return err
}
