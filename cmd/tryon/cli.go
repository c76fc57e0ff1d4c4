package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tryon/internal/imagegen"
	"tryon/internal/infra"
	"tryon/internal/infra/credentials"
	"tryon/internal/providers/image"
	"tryon/internal/storage"
	"tryon/internal/tryon"
)

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tryon",
		Short: "Virtual try-on with the NanoBanana image API",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Dress the person image in the cloth image",
		Args:  cobra.NoArgs,
		RunE:  RunHandler,
	}
	runCmd.Flags().String("person", "", "Path to the person image (jpg, jpeg, png)")
	runCmd.Flags().String("cloth", "", "Path to the clothing image (jpg, jpeg, png)")
	runCmd.Flags().String("out", ".", "Directory to save "+tryon.DownloadFilename+" in")
	runCmd.Flags().String("notes", "", "Extra instruction appended to the prompt")
	runCmd.Flags().String("locale", "en", "Language for error messages (en, id)")
	_ = runCmd.MarkFlagRequired("person")
	_ = runCmd.MarkFlagRequired("cloth")

	ratiosCmd := &cobra.Command{
		Use:   "ratios",
		Short: "List supported aspect ratios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRatios(cmd.OutOrStdout())
		},
	}

	ratioCmd := &cobra.Command{
		Use:   "ratio FILE | WIDTH HEIGHT",
		Short: "Show the aspect ratio a person image would be generated at",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  RatioHandler,
	}

	rootCmd.AddCommand(runCmd, ratiosCmd, ratioCmd)
	return rootCmd
}

func RunHandler(cmd *cobra.Command, args []string) error {
	personPath, _ := cmd.Flags().GetString("person")
	clothPath, _ := cmd.Flags().GetString("cloth")
	outDir, _ := cmd.Flags().GetString("out")
	notes, _ := cmd.Flags().GetString("notes")
	locale, _ := cmd.Flags().GetString("locale")

	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	// progress goes to stderr; keep stdout for the result summary
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile).Level(zerolog.WarnLevel).With().Str("cmd", "tryon").Logger()
	ctx := cmd.Context()

	person, err := loadImage(personPath)
	if err != nil {
		return report(cmd, locale, err)
	}
	cloth, err := loadImage(clothPath)
	if err != nil {
		return report(cmd, locale, err)
	}
	store, err := storage.NewFileStore(outDir)
	if err != nil {
		return err
	}

	resolver, closeCreds, err := credentials.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCreds()

	svc := tryon.NewDefault(cfg, resolver, &logger, nil)
	stderr := cmd.ErrOrStderr()
	res, err := svc.Run(ctx, tryon.Input{
		Person:  person,
		Cloth:   cloth,
		Notes:   notes,
		OnEvent: func(ev image.Event) { printProgress(stderr, ev) },
	})
	if err != nil {
		return report(cmd, locale, err)
	}

	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	fmt.Fprintf(out, "task:         %s\n", res.TaskID)
	fmt.Fprintf(out, "aspect ratio: %s\n", res.AspectRatio)
	fmt.Fprintf(out, "result url:   %s\n", res.ResultURL)
	if !res.DownloadAvailable() {
		fmt.Fprintln(out, "download:     unavailable, open the result url instead")
		return nil
	}
	path, err := store.Write(ctx, res.Download.Filename, res.Download.Data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved:        %s\n", path)
	return nil
}

func RatioHandler(cmd *cobra.Command, args []string) error {
	var label string
	if len(args) == 2 {
		w, errW := strconv.Atoi(args[0])
		h, errH := strconv.Atoi(args[1])
		if errW != nil || errH != nil {
			return fmt.Errorf("width and height must be integers")
		}
		l, err := imagegen.ClosestRatio(w, h)
		if err != nil {
			return err
		}
		label = l
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		l, warn := imagegen.InferRatio(data)
		if warn != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v, using default\n", warn)
		}
		label = l
	}
	fmt.Fprintln(cmd.OutOrStdout(), label)
	return nil
}

func listRatios(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"RATIO", "VALUE", "DEFAULT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("\t")
	for _, r := range imagegen.Ratios() {
		def := ""
		if r.Label == imagegen.DefaultAspectRatio {
			def = "*"
		}
		table.Append([]string{r.Label, strconv.FormatFloat(r.Value, 'f', 4, 64), def})
	}
	table.Render()
	return nil
}

func loadImage(path string) (imagegen.SourceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return imagegen.SourceImage{}, err
	}
	return imagegen.NewSourceImage(path, "", data)
}

func printProgress(w io.Writer, ev image.Event) {
	switch ev.Stage {
	case image.StageUploading:
		fmt.Fprintf(w, "uploading %s image...\n", ev.Detail)
	case image.StageSubmitting:
		fmt.Fprintln(w, "creating task...")
	case image.StagePolling:
		pct := 0
		if ev.MaxAttempts > 0 {
			pct = ev.Attempt * 100 / ev.MaxAttempts
		}
		fmt.Fprintf(w, "\rprocessing %s (%d%%)", ev.TaskID, pct)
		if ev.Detail != "pending" {
			fmt.Fprintln(w)
		}
	}
}

// report prints the localized message followed by the underlying error and
// hands the error back to cobra.
func report(cmd *cobra.Command, locale string, err error) error {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, "error:", tryon.Message(locale, err))
	fmt.Fprintf(w, "  %v\n", err)
	cmd.SilenceErrors = true
	return err
}
