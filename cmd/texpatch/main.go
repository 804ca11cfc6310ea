package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/esimov/texpatch"
	"github.com/esimov/texpatch/store"
	"github.com/esimov/texpatch/utils"
)

const HelpBanner = `
┌┬┐┌─┐─┐ ┬┌─┐┌─┐┌┬┐┌─┐┬ ┬
 │ ├┤ ┌┴┬┘├─┘├─┤ │ │  ├─┤
 ┴ └─┘┴ └─┴  ┴ ┴ ┴ └─┘┴ ┴

Texture atlas patcher.
    Version: %s

`

// Version indicates the current build version.
var Version string

var (
	// Flags
	dataDir     = flag.String("data", "", "Base data directory (empty for a new project)")
	graphicsDir = flag.String("graphics", "", "Directory with the sprite and background images")
	masksDir    = flag.String("masks", "", "Directory with the collision mask images")
	spritesFile = flag.String("sprites", "", "Sprite options YAML file")
	outDir      = flag.String("out", "", "Destination directory of the patched data")
	pageSize    = flag.Int("page", texpatch.DefaultPageSize, "Width and height of the new atlas pages")
	margin      = flag.Int("margin", texpatch.DefaultMargin, "Free space around a newly placed texture")
	extrude     = flag.Int("extrude", texpatch.DefaultExtrude, "Number of edge pixels repeated around each texture (at most -margin)")
	pageFormat  = flag.String("format", string(store.PNG), "Page image format (png or bmp)")
	debug       = flag.Bool("debug", false, "Write an overlay highlighting the packed regions of each new page")
	force       = flag.Bool("f", false, "Overwrite the destination without asking")
	watch       = flag.Bool("watch", false, "Patch again whenever an image changes")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nPlease provide the destination directory with the -out flag!", utils.ErrorMessage))
	}
	if *graphicsDir == "" && *masksDir == "" && *spritesFile == "" {
		flag.Usage()
		log.Fatal(utils.DecorateText("\nNothing to patch: provide at least one of -graphics, -masks or -sprites!", utils.ErrorMessage))
	}
	format, err := store.ParseFormat(*pageFormat)
	if err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	if err := confirmOverwrite(*outDir, *force, os.Stdin, os.Stderr); err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	p := &patcher{
		importer: &texpatch.Importer{
			PageSize: *pageSize,
			Margin:   *margin,
			Extrude:  *extrude,
			Debug:    *debug,
			Logger:   log.New(os.Stderr, utils.DecorateText("texpatch: ", utils.StatusMessage), 0),
		},
		format: format,
	}
	if utils.IsTerminal(os.Stderr) {
		msg := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ TEXPATCH", utils.StatusMessage),
			utils.DecorateText("⇢ packing textures...", utils.DefaultMessage),
		)
		p.spinner = utils.NewSpinner(os.Stderr, msg, time.Millisecond*80, true)
	}

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		if p.spinner != nil {
			p.spinner.RestoreCursor()
		}
		os.Exit(1)
	}()

	if err := p.run(); err != nil {
		log.Fatalf(
			utils.DecorateText("\nError patching the data: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
	}
	if *watch {
		watchAndPatch(p)
	}
}

type patcher struct {
	importer *texpatch.Importer
	format   store.Format
	spinner  *utils.Spinner
}

// run loads the base data, applies every requested patch step and saves the result.
func (p *patcher) run() error {
	now := time.Now()

	data := store.New()
	if *dataDir != "" {
		var err error
		if data, err = store.Load(*dataDir); err != nil {
			return err
		}
	}

	if p.spinner != nil {
		p.spinner.StopMsg = ""
		p.spinner.Start()
		defer p.spinner.Stop()
	}

	if *graphicsDir != "" {
		report, err := p.importer.Import(data, *graphicsDir)
		if err != nil {
			return fmt.Errorf("importing graphics: %w", err)
		}
		if err := writeOverlays(*outDir, report.Overlays); err != nil {
			return err
		}
		log.Printf("Imported graphics: %d replaced, %d packed on %d new pages",
			report.Replaced, report.Packed, report.Pages)
	}

	if *masksDir != "" {
		if err := texpatch.ImportMasks(data, *masksDir); err != nil {
			return fmt.Errorf("importing collision masks: %w", err)
		}
		log.Println("Imported collision masks")
	}

	if *spritesFile != "" {
		opts, err := texpatch.LoadSpriteOptions(*spritesFile)
		if err != nil {
			return err
		}
		if err := texpatch.ApplySpriteOptions(data, opts); err != nil {
			return fmt.Errorf("changing sprite options: %w", err)
		}
		log.Printf("Changed the options of %d sprites", len(opts))
	}

	if err := data.Save(*outDir, p.format); err != nil {
		return err
	}

	if p.spinner != nil {
		p.spinner.StopMsg = fmt.Sprintf("%s %s\n",
			utils.DecorateText("⚡ TEXPATCH", utils.StatusMessage),
			utils.DecorateText("the data has been patched successfully ✔", utils.SuccessMessage),
		)
	}
	fmt.Fprintf(os.Stderr, "\nPatched data saved in: %s\nExecution time: %s\n",
		utils.DecorateText(*outDir, utils.SuccessMessage),
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage),
	)
	return nil
}

// confirmOverwrite refuses to replace existing data unless forced or confirmed by the user.
// The question is only asked when in is a terminal.
func confirmOverwrite(dir string, force bool, in *os.File, out io.Writer) error {
	_, err := os.Stat(filepath.Join(dir, store.ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if force {
		fmt.Fprintf(out, "%s will be overwritten\n", dir)
		return nil
	}
	if !utils.IsTerminal(in) {
		return fmt.Errorf("%s already exists, use -f to overwrite it", dir)
	}

	question := utils.DecorateText(fmt.Sprintf("WARNING: %s already exists! Would you like to overwrite it?", dir), utils.WarningMessage)
	ok, err := utils.AskYesNo(in, out, question)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("user chose not to overwrite, exiting")
	}
	return nil
}

// writeOverlays saves the debug overlays next to the patched data.
func writeOverlays(dir string, overlays []*image.NRGBA) error {
	if len(overlays) == 0 {
		return nil
	}
	debugDir := filepath.Join(dir, "debug")
	if err := os.MkdirAll(debugDir, 0755); err != nil {
		return err
	}
	for i, img := range overlays {
		if err := imaging.Save(img, filepath.Join(debugDir, fmt.Sprintf("page_%d.png", i))); err != nil {
			return fmt.Errorf("could not save the debug overlay: %w", err)
		}
	}
	return nil
}

// watchAndPatch runs the patch again every time an input image changes.
func watchAndPatch(p *patcher) {
	var roots []string
	for _, dir := range []string{*graphicsDir, *masksDir} {
		if dir != "" {
			roots = append(roots, dir)
		}
	}
	w, err := utils.NewWatcher([]string{".png"}, roots...)
	if err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}
	defer w.Close()

	log.Println(utils.DecorateText("Watching for changes, press CTRL-C to stop", utils.StatusMessage))
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			log.Printf("%s changed", name)
			if err := p.run(); err != nil {
				log.Println(utils.DecorateText(err.Error(), utils.ErrorMessage))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Println(utils.DecorateText(err.Error(), utils.ErrorMessage))
		}
	}
}
