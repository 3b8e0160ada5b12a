package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wormlife/wormlife/internal/component"
	"github.com/wormlife/wormlife/internal/config"
	"github.com/wormlife/wormlife/internal/persist"
	"go.uber.org/zap"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the saved game without modifying it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath, true)
			if err != nil {
				return err
			}
			fromBackup, _ := cmd.Flags().GetBool("backup")

			// Read-only: a corrupt primary is reported, never deleted.
			fs := afero.NewReadOnlyFs(afero.NewOsFs())
			g := persist.NewGateway(fs, cfg.Save.Dir, nil, nil, zap.NewNop())
			var d *persist.SaveData
			if fromBackup {
				if d, err = g.ReloadFromBackup(); err != nil {
					return err
				}
			} else {
				d = g.Load()
			}
			printSaveData(d, g.Source())
			return nil
		},
	}
	cmd.Flags().Bool("backup", false, "read the backup file instead of the primary")
	return cmd
}

func printSaveData(d *persist.SaveData, src persist.Source) {
	summary := table.NewWriter()
	summary.SetOutputMirror(os.Stdout)
	summary.SetStyle(table.StyleLight)
	summary.AppendRows([]table.Row{
		{"source", src},
		{"play time", (time.Duration(d.TotalPlayTime * float64(time.Second))).Round(time.Second)},
		{"acorns", d.AcornCount},
		{"diamonds", d.DiamondCount},
		{"items owned", len(d.OwnedItemIDs)},
		{"equipped", fmt.Sprintf("hat=%q face=%q costume=%q", d.EquippedHatID, d.EquippedFaceID, d.EquippedCostumeID)},
		{"achievements", len(d.UnlockedAchIDs)},
		{"map", d.SelectedMapIndex},
		{"sfx / bgm", fmt.Sprintf("%s / %s", d.SfxOption, d.BgmOption)},
		{"session", d.SessionID},
	})
	summary.Render()

	worms := table.NewWriter()
	worms.SetOutputMirror(os.Stdout)
	worms.SetStyle(table.StyleLight)
	worms.AppendHeader(table.Row{"ID", "Name", "Gen", "Parent", "Stage", "Age (min)", "Lifespan (min)", "Alive"})
	for _, w := range d.WormList {
		parent := "-"
		if w.ParentID != component.NoParent {
			parent = fmt.Sprint(w.ParentID)
		}
		worms.AppendRow(table.Row{w.ID, w.Name, w.Generation, parent, w.Stage, fmt.Sprintf("%.1f", w.Age), fmt.Sprintf("%.0f", w.Lifespan), w.Alive})
	}
	worms.Render()
}

func lineageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage",
		Short: "List every worm recorded in the lineage archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath, true)
			if err != nil {
				return err
			}
			if cfg.Archive.Path == "" {
				return fmt.Errorf("archive disabled: set [archive] path")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			archive, err := persist.OpenArchive(ctx, cfg.Archive.Path, zap.NewNop())
			if err != nil {
				return err
			}
			defer archive.Close()

			rows, err := archive.Lineage(ctx)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No worms have died yet.")
				return nil
			}
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Gen", "ID", "Name", "Parent", "Age (min)", "Cause", "Died"})
			for _, r := range rows {
				t.AppendRow(table.Row{r.Generation, r.WormID, r.Name, r.ParentID, fmt.Sprintf("%.0f", r.Age), r.Cause, r.DiedAt.Format(time.DateTime)})
			}
			t.Render()
			return nil
		},
	}
}
