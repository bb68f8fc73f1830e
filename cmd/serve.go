package cmd

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nibzard/spec-view-go/internal/history"
	"github.com/nibzard/spec-view-go/internal/scanner"
	"github.com/nibzard/spec-view-go/internal/ui"
	"github.com/nibzard/spec-view-go/internal/utils"
	"github.com/nibzard/spec-view-go/internal/watcher"
	"github.com/nibzard/spec-view-go/internal/web"
)

const defaultHost = "127.0.0.1"

// startWatcher creates a watcher over the configured spec locations. A nil
// watcher with a nil error means there is nothing to watch.
func (e *env) startWatcher(notifier *watcher.Notifier) (*watcher.Watcher, error) {
	paths := watcher.WatchPaths(e.cfg.Root, e.cfg.SpecPaths, e.cfg.Include)
	w, err := watcher.New(paths, notifier,
		watcher.WithDebounce(e.cfg.Debounce()),
		watcher.WithExclude(e.cfg.Root, e.cfg.Exclude),
		watcher.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	e.logger.Debug("watching", "dirs", len(w.Watched()))
	return w, nil
}

// tuiCommand launches the terminal dashboard.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	noWatch := fs.Bool("no-watch", false, "Do not rescan when spec files change")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	if !ui.IsTTY(stdout) {
		e.logger.Info("stdout is not a terminal, printing the list instead")
		return listCommand(e, nil)
	}

	if *noWatch {
		return ui.RunTUI(ctx, e.scan)
	}

	notifier := watcher.NewNotifier()
	w, err := e.startWatcher(notifier)
	if err != nil {
		e.logger.Warn("live reload disabled", "err", err)
		return ui.RunTUI(ctx, e.scan)
	}
	changes, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()
	g.Go(func() error {
		return w.Run(runCtx)
	})
	g.Go(func() error {
		defer stop()
		return ui.RunTUI(runCtx, e.scan, ui.WithChanges(changes))
	})
	return g.Wait()
}

// serveCommand starts the web dashboard and keeps it in sync with the files.
func serveCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", e.cfg.Serve.Port, "Port to serve on")
	host := fs.String("host", defaultHost, "Interface to bind")
	noBrowser := fs.Bool("no-browser", !e.cfg.Serve.OpenBrowser, "Do not open a browser")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}
	if *port < 0 || *port > 65535 {
		return fmt.Errorf("invalid port %d", *port)
	}

	root := e.cfg.Root
	limit := e.cfg.History.Limit
	srv, err := web.New(e.scan,
		web.WithLogger(e.logger),
		web.WithHistory(func(ctx context.Context) ([]history.Commit, error) {
			return history.Get(ctx, root, limit)
		}))
	if err != nil {
		return err
	}
	if len(srv.Result().Groups) == 0 {
		e.logger.Info(noSpecsHint)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(*host, strconv.Itoa(*port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	url := "http://" + ln.Addr().String()
	fmt.Fprintf(stdout, "Serving at %s\n", url)

	g, gctx := errgroup.WithContext(ctx)
	notifier := watcher.NewNotifier()
	if w, err := e.startWatcher(notifier); err != nil {
		e.logger.Warn("live reload disabled", "err", err)
	} else {
		changes, unsubscribe := notifier.Subscribe()
		defer unsubscribe()
		g.Go(func() error {
			return w.Run(gctx)
		})
		g.Go(func() error {
			return srv.Follow(gctx, changes)
		})
	}
	g.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	if !*noBrowser {
		openBrowser(e, url)
	}
	return g.Wait()
}

func openBrowser(e *env, url string) {
	name, args, ok := utils.BrowserCommand(runtime.GOOS, url)
	if !ok {
		return
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		e.logger.Warn("could not open browser", "err", err)
	}
}

// watchCommand rescans on every change and prints one summary line per scan.
func watchCommand(ctx context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("spec-view watch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := noArgs(fs); err != nil {
		return err
	}

	notifier := watcher.NewNotifier()
	w, err := e.startWatcher(notifier)
	if err != nil {
		return err
	}
	changes, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	report := func() {
		result, err := e.scan()
		if err != nil {
			e.logger.Error("scan failed", "err", err)
			return
		}
		fmt.Fprintln(stdout, watchLine(time.Now(), result))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		report()
		for {
			select {
			case <-gctx.Done():
				return nil
			case _, ok := <-changes:
				if !ok {
					return nil
				}
				report()
			}
		}
	})
	return g.Wait()
}

func watchLine(now time.Time, result *scanner.Result) string {
	line := fmt.Sprintf("[%s] %s", now.Format("15:04:05"), summaryLine(result.Groups))
	if n := len(result.Skipped); n > 0 {
		line += fmt.Sprintf(" | %d skipped", n)
	}
	return line
}
