package main

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
)

// watchFile runs once immediately, then re-runs whenever path's contents
// change, a live-reload convenience for iterating on a script.
func watchFile(path string, run func() error) error {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "--- %s changed, recompiling ---\n", path)
			if err := run(); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
