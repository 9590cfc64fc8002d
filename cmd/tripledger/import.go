package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aronveress/tripledger/internal/cli"
	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/extract"
	"github.com/aronveress/tripledger/internal/ofx"
	"github.com/aronveress/tripledger/internal/session"
)

func importCmd() *cobra.Command {
	var (
		tripID        int64
		statementPath string
		ofxPath       string
	)

	cmd := &cobra.Command{
		Use:   "import [receipt images...]",
		Short: "Reconcile receipt photos against a bank statement and commit the batch",
		Long: `Import runs one reconciliation session: receipt images and a statement
document are extracted concurrently, receipts are matched against statement
rows, and the merged batch is reviewed interactively before an atomic commit.

Statements can be a text export scanned by the AI extractor (--statement)
or an OFX/QFX download parsed locally (--ofx).`,
		Example: `  tripledger import --trip 1 --ofx statement.ofx receipts/*.jpg
  tripledger import --trip 1 --statement statement.csv konoba.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(args) == 0 && statementPath == "" && ofxPath == "" {
				return fmt.Errorf("nothing to import: pass receipt images, --statement or --ofx")
			}

			apiKey := viper.GetString("gemini.api_key")
			if apiKey == "" {
				return fmt.Errorf("%w: set gemini.api_key in config or TRIPLEDGER_GEMINI_API_KEY", common.ErrMissingConfig)
			}

			gemini, err := extract.NewGemini(ctx, extract.Config{
				APIKey:     apiKey,
				Model:      viper.GetString("gemini.model"),
				MaxRetries: viper.GetInt("gemini.max_retries"),
				RetryDelay: viper.GetDuration("gemini.retry_delay"),
			})
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var bar *progressbar.ProgressBar
			sess := session.New(store, gemini, gemini, session.WithProgress(func(completed, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("Extracting"),
						progressbar.OptionShowCount(),
						progressbar.OptionSetWidth(30),
						progressbar.OptionThrottle(65*time.Millisecond))
				}
				_ = bar.Set(completed)
			}))

			if err := sess.SelectTrip(ctx, tripID); err != nil {
				return err
			}

			for _, path := range args {
				image, err := os.ReadFile(path) // #nosec G304 -- user-supplied receipt path
				if err != nil {
					return fmt.Errorf("failed to read receipt %s: %w", path, err)
				}
				if err := sess.AddReceipt(filepath.Base(path), image, imageMIMEType(path)); err != nil {
					return err
				}
			}

			if statementPath != "" {
				content, err := os.ReadFile(statementPath) // #nosec G304 -- user-supplied statement path
				if err != nil {
					return fmt.Errorf("failed to read statement %s: %w", statementPath, err)
				}
				if err := sess.SetStatement(string(content)); err != nil {
					return err
				}
			}

			if ofxPath != "" {
				file, err := os.Open(ofxPath) // #nosec G304 -- user-supplied OFX path
				if err != nil {
					return fmt.Errorf("failed to open OFX file %s: %w", ofxPath, err)
				}
				candidates, err := ofx.NewParser().ParseStatement(file)
				_ = file.Close()
				if err != nil {
					return fmt.Errorf("failed to parse OFX file %s: %w", ofxPath, err)
				}
				if err := sess.AddStatementCandidates(candidates); err != nil {
					return err
				}
			}

			if err := sess.Process(ctx); err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}

			reviewer := cli.NewReviewer(os.Stdin, os.Stdout)
			_, err = reviewer.Review(ctx, sess, sess.Trip())
			return err
		},
	}

	cmd.Flags().Int64Var(&tripID, "trip", 0, "trip id to import into")
	cmd.Flags().StringVar(&statementPath, "statement", "", "statement document scanned by the AI extractor")
	cmd.Flags().StringVar(&ofxPath, "ofx", "", "OFX/QFX statement parsed locally")
	_ = cmd.MarkFlagRequired("trip")

	return cmd
}

func imageMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
