package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/wikr/internal/config"
	"github.com/pders01/wikr/internal/debuglog"
	"github.com/pders01/wikr/internal/validation"
)

var ErrNoOpener = errors.New("no application found to open URL")

// Launcher opens article permalinks in a browser and thumbnails in an
// image viewer. Every link is validated before a program sees it.
type Launcher struct {
	browser       string
	imageViewer   string
	defaultOpener string
	validator     *validation.ArticleURLValidator
	detector      *TypeDetector
	registry      *OpenerRegistry
	start         func(Command) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	f, err := loadOpeners()
	if err != nil {
		debuglog.Warnf("media: %v", err)
		f = &openersFile{}
	}
	detector := newTypeDetector(f)

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.DefaultOpener()
	}

	validator := validation.NewArticleURLValidator()
	if cfg.API.AllowLocalhost {
		validator = validation.NewPermissiveArticleURLValidator()
	}

	l := &Launcher{
		browser:       cfg.Media.Browser,
		imageViewer:   findCommand(cfg.Media.ImageViewers...),
		defaultOpener: defaultOpener,
		validator:     validator,
		detector:      detector,
		registry:      newOpenerRegistry(f, runtime.GOOS),
		start:         startDetached,
	}
	if l.browser == "" {
		l.browser = defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = defaultOpener
	}
	return l
}

// Resolve validates link and returns the invocation Open would run.
func (l *Launcher) Resolve(link string) (Command, Kind, error) {
	clean, err := l.validator.Validate(link)
	if err != nil {
		return Command{}, KindPage, fmt.Errorf("refusing to open link: %w", err)
	}

	kind := l.detector.DetectKind(clean)
	program := l.browser
	if kind == KindImage {
		program = l.imageViewer
	}
	if program == "" {
		program = l.defaultOpener
	}
	if program == "" {
		return Command{}, kind, ErrNoOpener
	}

	return l.registry.Command(program, kind, clean), kind, nil
}

func (l *Launcher) Open(link string) error {
	cmd, kind, err := l.Resolve(link)
	if err != nil {
		return err
	}

	debuglog.Infof("opening %s with %s %v", kind, cmd.Name, cmd.Args)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.Name, err)
	}
	return nil
}

// startDetached starts a GUI program without waiting for it to exit.
func startDetached(c Command) error {
	cmd := exec.Command(c.Name, c.Args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
