// Package log provides the logging setup for gravestash, built on top of
// the standard slog package.
//
// The RedactHandler masks the consent cookie and proxy credentials before
// they reach any output, so they never show up in a run log file.
//
// A run may also keep a log file: when the instruction file contains a
// "log" line, NewRunLogger tees every record into a timestamped file
// created by OpenRunLog while the console keeps its own verbosity.
//
//	f, err := log.OpenRunLog(cfg.LogDir, time.Now())
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	logger := log.NewRunLogger(os.Stderr, verbose, f)
package log
