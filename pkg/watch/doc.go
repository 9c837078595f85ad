// Package watch reloads configuration when its file changes on disk.
//
//	w, err := watch.New(watch.Config{Path: "crystal.yaml"}, logger)
//	go w.Watch(ctx, func() error {
//	    cfg, err := config.ReloadConfig()
//	    if err != nil {
//	        return err
//	    }
//	    return eng.Reload(&cfg.Schema)
//	})
//
// Bursts of events (an editor writing a temp file and renaming it over the
// original) produce a single callback.
package watch
